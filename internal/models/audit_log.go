package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog 审计日志，记录每次写操作。属于流水数据，按保留期物理清理
type AuditLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Operator  string         `gorm:"size:100;not null;index" json:"operator"`  // 操作人
	Action    string         `gorm:"size:50;not null" json:"action"`           // 操作类型：create, update, delete
	Target    string         `gorm:"size:50;not null;index" json:"target"`     // 目标类型：resource, policy, role
	TargetID  uint           `gorm:"not null;index" json:"target_id"`          // 目标ID
	Detail    datatypes.JSON `gorm:"type:jsonb" json:"detail,omitempty"`       // 操作明细
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

// TableName 表名
func (AuditLog) TableName() string {
	return "audit_logs"
}

// 审计操作类型常量
const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
)

// 审计目标类型常量
const (
	AuditTargetResource = "resource"
	AuditTargetPolicy   = "policy"
	AuditTargetRole     = "role"
)
