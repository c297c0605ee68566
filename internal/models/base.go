package models

import (
	"time"
)

// BaseModel 基础模型
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuditFields 审计字段，操作人由调用方上下文提供
type AuditFields struct {
	CreatedBy string `gorm:"size:100" json:"created_by"`
	UpdatedBy string `gorm:"size:100" json:"updated_by"`
}

// SoftDelete 逻辑删除标记。删除只翻转标记，所有常规读取都排除已删除行
type SoftDelete struct {
	Deleted bool `gorm:"column:is_deleted;default:false;index" json:"-"`
}
