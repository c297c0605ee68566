package models

// PermissionPolicy 授权策略模型：主体（角色）× 资源 × 动作 的绑定。
// 主体对同一资源持有多个动作时，对应多条策略记录
type PermissionPolicy struct {
	BaseModel
	AuditFields
	SoftDelete
	SubjectID  uint `gorm:"not null;index" json:"subject_id"`  // 授权主体（角色）
	ResourceID uint `gorm:"not null;index" json:"resource_id"` // 目标资源
	ActionID   uint `gorm:"not null;index" json:"action_id"`   // 允许的动作，必须属于目标资源
}

// TableName 表名
func (PermissionPolicy) TableName() string {
	return "permission_policies"
}
