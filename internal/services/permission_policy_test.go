package services

import (
	"context"
	"sync"
	"testing"

	"iamconsole/internal/models"
	"iamconsole/internal/query"
	apperrors "iamconsole/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type policyFixture struct {
	db       *gorm.DB
	resource *ResourceService
	policy   *PolicyService
	role     *models.Role
}

func newPolicyFixture(t *testing.T) *policyFixture {
	t.Helper()

	db := setupTestDB(t)
	locker := setupTestLocker(t)
	return &policyFixture{
		db:       db,
		resource: NewResourceService(db, locker, false),
		policy:   NewPolicyService(db, locker),
		role:     createTestRole(t, db),
	}
}

// createResourceWithAction 建一个带动作的资源，返回资源和动作id
func (f *policyFixture) createResourceWithAction(t *testing.T, code string) (uint, uint) {
	t.Helper()

	resource, err := f.resource.Create(context.Background(), "admin", 1, code, code, "", []ActionInput{
		{Name: "读取", Code: "read"},
	})
	require.NoError(t, err)
	require.Len(t, resource.Actions, 1)
	return resource.ID, resource.Actions[0].ID
}

func TestPolicyLifecycle(t *testing.T) {
	f := newPolicyFixture(t)
	ctx := context.Background()

	resourceID, actionID := f.createResourceWithAction(t, "ORDER_API")

	// 创建
	policy, err := f.policy.Create(ctx, "admin", &PolicyInput{
		SubjectID:  f.role.ID,
		ResourceID: resourceID,
		ActionID:   actionID,
	})
	require.NoError(t, err)

	// 获取到相同三元组
	got, err := f.policy.GetByID(policy.ID)
	require.NoError(t, err)
	assert.Equal(t, f.role.ID, got.SubjectID)
	assert.Equal(t, resourceID, got.ResourceID)
	assert.Equal(t, actionID, got.ActionID)

	// 删除后获取报NotFound，列表排除
	require.NoError(t, f.policy.Delete(ctx, "admin", policy.ID))
	_, err = f.policy.GetByID(policy.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	_, total, err := f.policy.GetWithPage(nil, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	// 行仍然存在
	var row models.PermissionPolicy
	require.NoError(t, f.db.First(&row, policy.ID).Error)
	assert.True(t, row.Deleted)
}

func TestPolicyReferentialIntegrity(t *testing.T) {
	f := newPolicyFixture(t)
	ctx := context.Background()

	resourceID, actionID := f.createResourceWithAction(t, "ORDER_API")
	otherResourceID, otherActionID := f.createResourceWithAction(t, "USER_API")

	tests := []struct {
		name  string
		input PolicyInput
		field string
	}{
		{"主体不存在", PolicyInput{SubjectID: 999, ResourceID: resourceID, ActionID: actionID}, "subject_id"},
		{"资源不存在", PolicyInput{SubjectID: f.role.ID, ResourceID: 999, ActionID: actionID}, "resource_id"},
		{"动作属于其他资源", PolicyInput{SubjectID: f.role.ID, ResourceID: resourceID, ActionID: otherActionID}, "action_id"},
		{"动作不存在", PolicyInput{SubjectID: f.role.ID, ResourceID: otherResourceID, ActionID: 999}, "action_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.policy.Create(ctx, "admin", &tt.input)
			require.Error(t, err)
			appErr, ok := err.(*apperrors.AppError)
			require.True(t, ok)
			assert.Equal(t, apperrors.KindValidation, appErr.Kind)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}

	// 校验失败不落库
	var count int64
	require.NoError(t, f.db.Model(&models.PermissionPolicy{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestPolicyCreateRejectsDisabledResource(t *testing.T) {
	f := newPolicyFixture(t)
	ctx := context.Background()

	resourceID, actionID := f.createResourceWithAction(t, "ORDER_API")
	_, err := f.resource.Update(ctx, "admin", resourceID, &ResourceUpdateInput{
		Name:    "ORDER_API",
		Enabled: false,
		Actions: []ActionInput{{Name: "读取", Code: "read"}},
	})
	require.NoError(t, err)

	// 动作被整体替换过，取当前的动作id
	actions, err := f.resource.FindActionsByResource(resourceID)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	actionID = actions[0].ID

	_, err = f.policy.Create(ctx, "admin", &PolicyInput{
		SubjectID:  f.role.ID,
		ResourceID: resourceID,
		ActionID:   actionID,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestPolicyUpdateDeletedNotFound(t *testing.T) {
	f := newPolicyFixture(t)
	ctx := context.Background()

	resourceID, actionID := f.createResourceWithAction(t, "ORDER_API")
	policy, err := f.policy.Create(ctx, "admin", &PolicyInput{
		SubjectID:  f.role.ID,
		ResourceID: resourceID,
		ActionID:   actionID,
	})
	require.NoError(t, err)

	require.NoError(t, f.policy.Delete(ctx, "admin", policy.ID))

	// 已删除的策略：更新报NotFound，删除仍然成功
	_, err = f.policy.Update(ctx, "admin", policy.ID, &PolicyInput{
		SubjectID:  f.role.ID,
		ResourceID: resourceID,
		ActionID:   actionID,
	})
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.NoError(t, f.policy.Delete(ctx, "admin", policy.ID))

	// 不存在的策略删除报NotFound
	err = f.policy.Delete(ctx, "admin", 999)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestPolicyConcurrentUpdatesSerialize(t *testing.T) {
	f := newPolicyFixture(t)
	ctx := context.Background()

	resourceID, actionID := f.createResourceWithAction(t, "ORDER_API")
	otherResourceID, otherActionID := f.createResourceWithAction(t, "USER_API")

	policy, err := f.policy.Create(ctx, "admin", &PolicyInput{
		SubjectID:  f.role.ID,
		ResourceID: resourceID,
		ActionID:   actionID,
	})
	require.NoError(t, err)

	// 两个并发更新提交不同的载荷，互斥锁保证串行，
	// 终态必须完整等于其中一个载荷，不允许字段混写
	inputA := PolicyInput{SubjectID: f.role.ID, ResourceID: resourceID, ActionID: actionID}
	inputB := PolicyInput{SubjectID: f.role.ID, ResourceID: otherResourceID, ActionID: otherActionID}

	var wg sync.WaitGroup
	for _, input := range []PolicyInput{inputA, inputB} {
		wg.Add(1)
		go func(in PolicyInput) {
			defer wg.Done()
			_, err := f.policy.Update(ctx, "admin", policy.ID, &in)
			assert.NoError(t, err)
		}(input)
	}
	wg.Wait()

	got, err := f.policy.GetByID(policy.ID)
	require.NoError(t, err)

	matchesA := got.ResourceID == inputA.ResourceID && got.ActionID == inputA.ActionID
	matchesB := got.ResourceID == inputB.ResourceID && got.ActionID == inputB.ActionID
	assert.True(t, matchesA || matchesB, "终态必须完整等于其中一个提交的载荷")
}

func TestPolicyListFilters(t *testing.T) {
	f := newPolicyFixture(t)
	ctx := context.Background()

	resourceID, actionID := f.createResourceWithAction(t, "ORDER_API")
	otherResourceID, otherActionID := f.createResourceWithAction(t, "USER_API")

	_, err := f.policy.Create(ctx, "admin", &PolicyInput{SubjectID: f.role.ID, ResourceID: resourceID, ActionID: actionID})
	require.NoError(t, err)
	_, err = f.policy.Create(ctx, "admin", &PolicyInput{SubjectID: f.role.ID, ResourceID: otherResourceID, ActionID: otherActionID})
	require.NoError(t, err)

	list, total, err := f.policy.GetWithPage(&query.PolicyQuery{ResourceID: resourceID}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, resourceID, list[0].ResourceID)
}
