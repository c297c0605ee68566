package services

import (
	"encoding/json"
	"time"

	"iamconsole/internal/models"
	"iamconsole/pkg/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditService 审计日志服务
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// recordAudit 在调用方事务内写入一条审计日志。
// detail 序列化失败不中断业务，只记日志
func recordAudit(tx *gorm.DB, operator, action, target string, targetID uint, detail interface{}) error {
	entry := &models.AuditLog{
		Operator: operator,
		Action:   action,
		Target:   target,
		TargetID: targetID,
	}

	if detail != nil {
		data, err := json.Marshal(detail)
		if err != nil {
			logger.GetLogger().Errorf("Failed to marshal audit detail: %v", err)
		} else {
			entry.Detail = datatypes.JSON(data)
		}
	}

	return tx.Create(entry).Error
}

// GetWithPage 分页获取审计日志，按时间倒序
func (s *AuditService) GetWithPage(target string, page, pageSize int) ([]*models.AuditLog, int64, error) {
	var logs []*models.AuditLog
	var total int64

	q := s.db.Model(&models.AuditLog{})

	// 按目标类型筛选
	if target != "" {
		q = q.Where("target = ?", target)
	}

	// 计算总数
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询
	offset := (page - 1) * pageSize
	err := q.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// CleanupExpired 清理超过保留期的审计日志。
// 审计日志属于流水数据，到期物理删除
func (s *AuditService) CleanupExpired(retentionDays int) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		logger.GetLogger().Infof("Cleaned up %d expired audit logs", result.RowsAffected)
	}
	return nil
}
