package services

import (
	"context"
	"errors"

	"iamconsole/internal/models"
	"iamconsole/internal/query"
	apperrors "iamconsole/pkg/errors"
	"iamconsole/pkg/lock"
	"iamconsole/pkg/logger"

	"gorm.io/gorm"
)

// PolicyInput 策略创建/更新入参
type PolicyInput struct {
	SubjectID  uint `json:"subject_id" binding:"required"`
	ResourceID uint `json:"resource_id" binding:"required"`
	ActionID   uint `json:"action_id" binding:"required"`
}

// PolicyService 授权策略服务
type PolicyService struct {
	db     *gorm.DB
	locker lock.Locker
}

func NewPolicyService(db *gorm.DB, locker lock.Locker) *PolicyService {
	return &PolicyService{
		db:     db,
		locker: locker,
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建策略
func (s *PolicyService) Create(ctx context.Context, operator string, input *PolicyInput) (*models.PermissionPolicy, error) {
	// 同一资源下的策略创建互斥
	release, err := s.locker.Acquire(ctx, lock.PolicyCreateKey(input.ResourceID))
	if err != nil {
		return nil, lockError(err)
	}
	defer release()

	if err := s.validateReferences(input); err != nil {
		return nil, err
	}

	policy := &models.PermissionPolicy{
		SubjectID:  input.SubjectID,
		ResourceID: input.ResourceID,
		ActionID:   input.ActionID,
		AuditFields: models.AuditFields{
			CreatedBy: operator,
			UpdatedBy: operator,
		},
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(policy).Error; err != nil {
			return err
		}
		return recordAudit(tx, operator, models.AuditActionCreate, models.AuditTargetPolicy, policy.ID, policy)
	})
	if err != nil {
		logger.GetLogger().Errorf("Failed to create policy: %v", err)
		return nil, apperrors.Persistence("创建策略失败", err)
	}

	return policy, nil
}

// Update 更新策略。资源或动作可能已变更，重新校验引用完整性
func (s *PolicyService) Update(ctx context.Context, operator string, id uint, input *PolicyInput) (*models.PermissionPolicy, error) {
	release, err := s.locker.Acquire(ctx, lock.PolicyKey(id))
	if err != nil {
		return nil, lockError(err)
	}
	defer release()

	var policy models.PermissionPolicy
	err = s.db.Where("id = ? AND is_deleted = ?", id, false).First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("策略不存在")
		}
		return nil, apperrors.Persistence("查询策略失败", err)
	}

	if err := s.validateReferences(input); err != nil {
		return nil, err
	}

	policy.SubjectID = input.SubjectID
	policy.ResourceID = input.ResourceID
	policy.ActionID = input.ActionID
	policy.UpdatedBy = operator

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&policy).Error; err != nil {
			return err
		}
		return recordAudit(tx, operator, models.AuditActionUpdate, models.AuditTargetPolicy, policy.ID, input)
	})
	if err != nil {
		logger.GetLogger().Errorf("Failed to update policy %d: %v", id, err)
		return nil, apperrors.Persistence("更新策略失败", err)
	}

	return &policy, nil
}

// Delete 逻辑删除策略。重复删除视为成功
func (s *PolicyService) Delete(ctx context.Context, operator string, id uint) error {
	release, err := s.locker.Acquire(ctx, lock.PolicyKey(id))
	if err != nil {
		return lockError(err)
	}
	defer release()

	var policy models.PermissionPolicy
	err = s.db.First(&policy, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("策略不存在")
		}
		return apperrors.Persistence("查询策略失败", err)
	}

	if policy.Deleted {
		return nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&policy).Update("is_deleted", true).Error; err != nil {
			return err
		}
		return recordAudit(tx, operator, models.AuditActionDelete, models.AuditTargetPolicy, policy.ID, nil)
	})
	if err != nil {
		logger.GetLogger().Errorf("Failed to delete policy %d: %v", id, err)
		return apperrors.Persistence("删除策略失败", err)
	}

	return nil
}

// GetByID 获取策略
func (s *PolicyService) GetByID(id uint) (*models.PermissionPolicy, error) {
	var policy models.PermissionPolicy
	err := s.db.Where("id = ? AND is_deleted = ?", id, false).First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("策略不存在")
		}
		return nil, apperrors.Persistence("查询策略失败", err)
	}
	return &policy, nil
}

// GetWithPage 分页获取策略
func (s *PolicyService) GetWithPage(q *query.PolicyQuery, page, pageSize int) ([]*models.PermissionPolicy, int64, error) {
	var policies []*models.PermissionPolicy
	var total int64

	dbQuery := query.BuildPolicyPredicate(q).Apply(s.db.Model(&models.PermissionPolicy{}))

	// 计算总数
	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Persistence("查询策略失败", err)
	}

	// 分页查询
	offset := (page - 1) * pageSize
	err := dbQuery.Order("id").Offset(offset).Limit(pageSize).Find(&policies).Error
	if err != nil {
		return nil, 0, apperrors.Persistence("查询策略失败", err)
	}

	return policies, total, nil
}

// ========== 验证方法 ==========

// validateReferences 校验策略的引用完整性：
// 主体存在、资源存在且启用未删除、动作属于该资源
func (s *PolicyService) validateReferences(input *PolicyInput) error {
	var roleCount int64
	if err := s.db.Model(&models.Role{}).Where("id = ?", input.SubjectID).Count(&roleCount).Error; err != nil {
		return apperrors.Persistence("查询角色失败", err)
	}
	if roleCount == 0 {
		return apperrors.Validation("subject_id", "授权主体不存在")
	}

	var resource models.PermissionResource
	err := s.db.Where("id = ? AND is_deleted = ?", input.ResourceID, false).First(&resource).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Validation("resource_id", "资源不存在")
		}
		return apperrors.Persistence("查询资源失败", err)
	}
	if !resource.Enabled {
		return apperrors.Validation("resource_id", "资源未启用")
	}

	var actionCount int64
	if err := s.db.Model(&models.PermissionAction{}).
		Where("id = ? AND resource_id = ?", input.ActionID, input.ResourceID).
		Count(&actionCount).Error; err != nil {
		return apperrors.Persistence("查询动作失败", err)
	}
	if actionCount == 0 {
		return apperrors.Validation("action_id", "动作不属于该资源")
	}

	return nil
}
