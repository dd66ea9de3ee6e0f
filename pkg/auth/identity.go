package auth

// Identity 已认证的调用者，由认证中间件解析后显式传递给业务层
type Identity struct {
	UserID uint
	Role   string
}

// IsAdmin 是否为管理员
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == "admin"
}
