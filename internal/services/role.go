package services

import (
	"errors"
	"unicode/utf8"

	"iamconsole/internal/models"
	apperrors "iamconsole/pkg/errors"

	"gorm.io/gorm"
)

// RoleService 角色服务，角色是授权策略的主体
type RoleService struct {
	db *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{db: db}
}

// ========== 基础CRUD方法 ==========

// Create 创建角色
func (s *RoleService) Create(operator, code, name, description string) (*models.Role, error) {
	if err := s.validateCreateParams(code, name); err != nil {
		return nil, err
	}

	// 检查角色代码是否重复
	var count int64
	if err := s.db.Model(&models.Role{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return nil, apperrors.Persistence("查询角色失败", err)
	}
	if count > 0 {
		return nil, apperrors.Validation("code", "角色代码已存在")
	}

	role := &models.Role{
		Code:        code,
		Name:        name,
		Description: description,
		Status:      models.RoleStatusActive,
		AuditFields: models.AuditFields{
			CreatedBy: operator,
			UpdatedBy: operator,
		},
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(role).Error; err != nil {
			return err
		}
		return recordAudit(tx, operator, models.AuditActionCreate, models.AuditTargetRole, role.ID, role)
	})
	if err != nil {
		return nil, apperrors.Persistence("创建角色失败", err)
	}
	return role, nil
}

// GetByID 根据ID获取角色
func (s *RoleService) GetByID(id uint) (*models.Role, error) {
	var role models.Role
	err := s.db.First(&role, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("角色不存在")
		}
		return nil, apperrors.Persistence("查询角色失败", err)
	}
	return &role, nil
}

// GetWithPage 分页获取角色
func (s *RoleService) GetWithPage(status string, page, pageSize int) ([]*models.Role, int64, error) {
	var roles []*models.Role
	var total int64

	q := s.db.Model(&models.Role{})

	// 按状态筛选
	if status != "" {
		q = q.Where("status = ?", status)
	}

	// 计算总数
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Persistence("查询角色失败", err)
	}

	// 分页查询
	offset := (page - 1) * pageSize
	err := q.Order("id").Offset(offset).Limit(pageSize).Find(&roles).Error
	if err != nil {
		return nil, 0, apperrors.Persistence("查询角色失败", err)
	}

	return roles, total, nil
}

// ========== 验证方法 ==========

// validateCode 验证角色代码：只允许字母、数字和下划线
func (s *RoleService) validateCode(code string) bool {
	if len(code) < 2 || len(code) > 50 {
		return false
	}
	for _, r := range code {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_') {
			return false
		}
	}
	return true
}

// validateName 验证角色名称
func (s *RoleService) validateName(name string) bool {
	runeCount := utf8.RuneCountInString(name)
	return runeCount >= 2 && runeCount <= 50
}

func (s *RoleService) validateCreateParams(code, name string) error {
	if !s.validateCode(code) {
		return apperrors.Validation("code", "角色代码长度必须在2-50个字符之间，且只能包含字母、数字和下划线")
	}
	if !s.validateName(name) {
		return apperrors.Validation("name", "角色名称长度必须在2-50个字符之间")
	}
	return nil
}
