package model

// 用户角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 用户模型
type User struct {
	Base
	Name     string  `gorm:"type:varchar(100);not null" json:"name"`
	Email    string  `gorm:"type:varchar(100);not null;uniqueIndex" json:"email"`
	Image    string  `gorm:"type:varchar(255)" json:"image"`
	Password string  `gorm:"type:varchar(100)" json:"-"` // OAuth用户为空
	Role     string  `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	GoogleID *string `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	Status   int     `gorm:"not null;default:1" json:"status"` // 0=禁用 1=正常
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
