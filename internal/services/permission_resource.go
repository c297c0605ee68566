package services

import (
	"context"
	"errors"
	"strings"

	"iamconsole/internal/models"
	"iamconsole/internal/query"
	apperrors "iamconsole/pkg/errors"
	"iamconsole/pkg/lock"
	"iamconsole/pkg/logger"

	"gorm.io/gorm"
)

// ActionInput 资源动作入参
type ActionInput struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

// ResourceUpdateInput 资源更新入参。
// code和app_id创建后不可修改，入参中不出现，提交了也不会生效
type ResourceUpdateInput struct {
	Name    string        `json:"name" binding:"required"`
	Remark  string        `json:"remark"`
	Enabled bool          `json:"enabled"`
	Actions []ActionInput `json:"actions"`
}

// ResourceService 权限资源服务
type ResourceService struct {
	db     *gorm.DB
	locker lock.Locker
	// 兼容旧控制台：更新时无视提交值强制 enabled=true
	forceEnableOnUpdate bool
}

func NewResourceService(db *gorm.DB, locker lock.Locker, forceEnableOnUpdate bool) *ResourceService {
	return &ResourceService{
		db:                  db,
		locker:              locker,
		forceEnableOnUpdate: forceEnableOnUpdate,
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建资源及其动作
func (s *ResourceService) Create(ctx context.Context, operator string, appID uint, code, name, remark string, actions []ActionInput) (*models.PermissionResource, error) {
	if err := validateResourceParams(code, name); err != nil {
		return nil, err
	}

	// 同一应用下的创建互斥，防止并发写入重复code
	release, err := s.locker.Acquire(ctx, lock.ResourceCreateKey(appID))
	if err != nil {
		return nil, lockError(err)
	}
	defer release()

	// 检查资源代码是否重复（同一应用内，未删除的行）
	var count int64
	if err := s.db.Model(&models.PermissionResource{}).
		Where("app_id = ? AND code = ? AND is_deleted = ?", appID, code, false).
		Count(&count).Error; err != nil {
		return nil, apperrors.Persistence("查询资源失败", err)
	}
	if count > 0 {
		return nil, apperrors.Validation("code", "资源代码已存在")
	}

	resource := &models.PermissionResource{
		Code:    code,
		Name:    name,
		AppID:   appID,
		Enabled: true,
		Remark:  remark,
		AuditFields: models.AuditFields{
			CreatedBy: operator,
			UpdatedBy: operator,
		},
	}
	for _, a := range actions {
		resource.Actions = append(resource.Actions, models.PermissionAction{
			Name: a.Name,
			Code: a.Code,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(resource).Error; err != nil {
			return err
		}
		return recordAudit(tx, operator, models.AuditActionCreate, models.AuditTargetResource, resource.ID, resource)
	})
	if err != nil {
		logger.GetLogger().Errorf("Failed to create resource %s: %v", code, err)
		return nil, apperrors.Persistence("创建资源失败", err)
	}

	return resource, nil
}

// Update 更新资源并整体替换动作集合。
// code和app_id不参与更新；资源与动作在同一事务内落库
func (s *ResourceService) Update(ctx context.Context, operator string, id uint, input *ResourceUpdateInput) (*models.PermissionResource, error) {
	if err := validateResourceName(input.Name); err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, lock.ResourceKey(id))
	if err != nil {
		return nil, lockError(err)
	}
	defer release()

	var resource models.PermissionResource
	err = s.db.Where("id = ? AND is_deleted = ?", id, false).First(&resource).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("资源不存在")
		}
		return nil, apperrors.Persistence("查询资源失败", err)
	}

	resource.Name = input.Name
	resource.Remark = input.Remark
	resource.Enabled = input.Enabled
	if s.forceEnableOnUpdate {
		resource.Enabled = true
	}
	resource.UpdatedBy = operator

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&resource).Error; err != nil {
			return err
		}

		// 整体替换动作集合：先删后插，与资源更新同一事务
		if err := tx.Where("resource_id = ?", resource.ID).Delete(&models.PermissionAction{}).Error; err != nil {
			return err
		}
		resource.Actions = nil
		for _, a := range input.Actions {
			resource.Actions = append(resource.Actions, models.PermissionAction{
				Name:       a.Name,
				Code:       a.Code,
				ResourceID: resource.ID,
			})
		}
		if len(resource.Actions) > 0 {
			if err := tx.Create(&resource.Actions).Error; err != nil {
				return err
			}
		}

		return recordAudit(tx, operator, models.AuditActionUpdate, models.AuditTargetResource, resource.ID, input)
	})
	if err != nil {
		logger.GetLogger().Errorf("Failed to update resource %d: %v", id, err)
		return nil, apperrors.Persistence("更新资源失败", err)
	}

	return &resource, nil
}

// Delete 逻辑删除资源。重复删除视为成功
func (s *ResourceService) Delete(ctx context.Context, operator string, id uint) error {
	release, err := s.locker.Acquire(ctx, lock.ResourceKey(id))
	if err != nil {
		return lockError(err)
	}
	defer release()

	var resource models.PermissionResource
	err = s.db.First(&resource, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("资源不存在")
		}
		return apperrors.Persistence("查询资源失败", err)
	}

	// 已删除的行再次删除直接返回成功
	if resource.Deleted {
		return nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&resource).Update("is_deleted", true).Error; err != nil {
			return err
		}
		return recordAudit(tx, operator, models.AuditActionDelete, models.AuditTargetResource, resource.ID, nil)
	})
	if err != nil {
		logger.GetLogger().Errorf("Failed to delete resource %d: %v", id, err)
		return apperrors.Persistence("删除资源失败", err)
	}

	return nil
}

// GetByID 获取资源及其动作
func (s *ResourceService) GetByID(id uint) (*models.PermissionResource, error) {
	var resource models.PermissionResource
	err := s.db.Preload("Actions").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&resource).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("资源不存在")
		}
		return nil, apperrors.Persistence("查询资源失败", err)
	}
	return &resource, nil
}

// GetWithPage 分页获取资源
func (s *ResourceService) GetWithPage(q *query.ResourceQuery, page, pageSize int) ([]*models.PermissionResource, int64, error) {
	var resources []*models.PermissionResource
	var total int64

	dbQuery := query.BuildResourcePredicate(q).Apply(s.db.Model(&models.PermissionResource{}))

	// 计算总数
	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Persistence("查询资源失败", err)
	}

	// 分页查询
	offset := (page - 1) * pageSize
	err := dbQuery.Preload("Actions").Order("id").Offset(offset).Limit(pageSize).Find(&resources).Error
	if err != nil {
		return nil, 0, apperrors.Persistence("查询资源失败", err)
	}

	return resources, total, nil
}

// FindActionsByResource 获取资源下的全部动作
func (s *ResourceService) FindActionsByResource(resourceID uint) ([]models.PermissionAction, error) {
	var actions []models.PermissionAction
	err := s.db.Where("resource_id = ?", resourceID).Find(&actions).Error
	if err != nil {
		return nil, apperrors.Persistence("查询动作失败", err)
	}
	return actions, nil
}

// ========== 验证方法 ==========

func validateResourceParams(code, name string) error {
	if strings.TrimSpace(code) == "" {
		return apperrors.Validation("code", "资源代码不能为空")
	}
	if len(code) > 100 {
		return apperrors.Validation("code", "资源代码长度不能超过100个字符")
	}
	return validateResourceName(name)
}

func validateResourceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.Validation("name", "资源名称不能为空")
	}
	if len(name) > 100 {
		return apperrors.Validation("name", "资源名称长度不能超过100个字符")
	}
	return nil
}

// lockError 锁错误翻译：等待超时和调用方取消都转为可重试的冲突错误，
// 只有Redis本身不可用才按存储故障处理
func lockError(err error) error {
	if errors.Is(err, lock.ErrAcquireTimeout) {
		return apperrors.Conflict("操作冲突，请稍后重试")
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Conflict("请求已取消，请稍后重试")
	}
	return apperrors.Persistence("获取锁失败", err)
}
