package models

// Role 角色模型，授权策略的主体
type Role struct {
	BaseModel
	AuditFields
	Code        string `gorm:"size:100;not null;uniqueIndex" json:"code"` // 角色代码，如 "order_admin"
	Name        string `gorm:"size:100;not null" json:"name"`             // 角色名称
	Description string `gorm:"size:255" json:"description"`               // 角色描述
	Status      string `gorm:"size:20;default:'active'" json:"status"`    // 状态：active, inactive
}

// 角色状态常量
const (
	RoleStatusActive   = "active"
	RoleStatusInactive = "inactive"
)
