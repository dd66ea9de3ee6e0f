package model

// Category 分类模型
type Category struct {
	Base
	Name string `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}
