package services

import (
	"fmt"
	"testing"
	"time"

	"iamconsole/internal/models"
	"iamconsole/pkg/lock"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB 每个测试一个独立的内存库
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.PermissionResource{},
		&models.PermissionAction{},
		&models.PermissionPolicy{},
		&models.AuditLog{},
	)
	require.NoError(t, err)

	return db
}

// setupTestLocker 基于miniredis的互斥锁
func setupTestLocker(t *testing.T) lock.Locker {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return lock.NewRedisLocker(client, "test", lock.Options{
		WaitTimeout: 2 * time.Second,
		TTL:         5 * time.Second,
		RetryDelay:  5 * time.Millisecond,
	})
}

// createTestRole 建一个策略主体
func createTestRole(t *testing.T, db *gorm.DB) *models.Role {
	t.Helper()

	role := &models.Role{Code: "test_role", Name: "测试角色", Status: models.RoleStatusActive}
	require.NoError(t, db.Create(role).Error)
	return role
}
