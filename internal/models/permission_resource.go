package models

// PermissionResource 权限资源模型（某个应用下可被保护的实体，如 "订单API"）
type PermissionResource struct {
	BaseModel
	AuditFields
	SoftDelete
	// 同一应用下code在未删除行中唯一，由服务层校验；
	// 不加数据库唯一索引，避免已逻辑删除的行阻塞重建
	Code    string `gorm:"size:100;not null;index:idx_resource_app_code" json:"code"` // 资源代码，创建后不可修改
	Name    string `gorm:"size:100;not null;index" json:"name"`                       // 资源名称，可搜索
	AppID   uint   `gorm:"not null;index:idx_resource_app_code" json:"app_id"`        // 所属应用，创建后不可修改
	Enabled bool   `gorm:"default:true" json:"enabled"`                               // 是否启用
	Remark  string `gorm:"size:255" json:"remark"`                                    // 备注

	// 关联关系：动作随资源生命周期存在
	Actions []PermissionAction `gorm:"foreignKey:ResourceID" json:"actions,omitempty"`
}

// TableName 表名
func (PermissionResource) TableName() string {
	return "permission_resources"
}

// PermissionAction 权限动作模型（资源上允许的操作，如 read/write）
type PermissionAction struct {
	BaseModel
	Name       string `gorm:"size:100;not null" json:"name"`     // 动作名称
	Code       string `gorm:"size:100;not null" json:"code"`     // 动作代码
	ResourceID uint   `gorm:"not null;index" json:"resource_id"` // 所属资源
}

// TableName 表名
func (PermissionAction) TableName() string {
	return "permission_actions"
}
