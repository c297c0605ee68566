package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"iamconsole/internal/models"
	"iamconsole/internal/services"
	"iamconsole/pkg/errors"
	"iamconsole/pkg/lock"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupResourceRouter 组装一个带资源路由的测试引擎，跳过真实认证，
// 直接注入操作人上下文
func setupResourceRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.PermissionResource{},
		&models.PermissionAction{},
		&models.AuditLog{},
	))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	locker := lock.NewRedisLocker(client, "test", lock.Options{
		WaitTimeout: time.Second,
		TTL:         5 * time.Second,
		RetryDelay:  5 * time.Millisecond,
	})

	handler := NewResourceHandler(services.NewResourceService(db, locker, false))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("username", "admin")
	})
	r.POST("/resources", handler.Create)
	r.GET("/resources/:id", handler.GetByID)
	r.GET("/resources", handler.List)
	r.DELETE("/resources/:id", handler.Delete)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) (int, map[string]interface{}) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestResourceHandlerMalformedID(t *testing.T) {
	r := setupResourceRouter(t)

	// id必须是数字，格式错误返回参数错误而不是崩溃
	status, resp := doRequest(t, r, http.MethodGet, "/resources/abc", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(errors.CodeInvalidParam), resp["code"])
}

func TestResourceHandlerCreateGetDelete(t *testing.T) {
	r := setupResourceRouter(t)

	_, resp := doRequest(t, r, http.MethodPost, "/resources",
		`{"code":"ORDER_API","name":"订单API","app_id":1,"actions":[{"name":"读取","code":"read"}]}`)
	require.Equal(t, float64(errors.CodeSuccess), resp["code"])
	data := resp["data"].(map[string]interface{})
	id := uint(data["id"].(float64))

	_, resp = doRequest(t, r, http.MethodGet, fmt.Sprintf("/resources/%d", id), "")
	require.Equal(t, float64(errors.CodeSuccess), resp["code"])
	data = resp["data"].(map[string]interface{})
	assert.Equal(t, "ORDER_API", data["code"])

	_, resp = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/resources/%d", id), "")
	require.Equal(t, float64(errors.CodeSuccess), resp["code"])

	_, resp = doRequest(t, r, http.MethodGet, fmt.Sprintf("/resources/%d", id), "")
	assert.Equal(t, float64(errors.CodeNotFound), resp["code"])
}

func TestResourceHandlerListEnvelope(t *testing.T) {
	r := setupResourceRouter(t)

	for i := 0; i < 3; i++ {
		_, resp := doRequest(t, r, http.MethodPost, "/resources",
			fmt.Sprintf(`{"code":"RES_%d","name":"资源%d","app_id":1}`, i, i))
		require.Equal(t, float64(errors.CodeSuccess), resp["code"])
	}

	_, resp := doRequest(t, r, http.MethodGet, "/resources?page=1&page_size=2", "")
	require.Equal(t, float64(errors.CodeSuccess), resp["code"])

	data := resp["data"].(map[string]interface{})
	list := data["list"].([]interface{})
	assert.Len(t, list, 2)

	p := data["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), p["current"])
	assert.Equal(t, float64(3), p["total"])
	assert.Equal(t, float64(2), p["totalPages"])
}

func TestResourceHandlerValidationError(t *testing.T) {
	r := setupResourceRouter(t)

	_, resp := doRequest(t, r, http.MethodPost, "/resources",
		`{"code":"ORDER_API","name":"订单API","app_id":1}`)
	require.Equal(t, float64(errors.CodeSuccess), resp["code"])

	// 同应用下code重复
	_, resp = doRequest(t, r, http.MethodPost, "/resources",
		`{"code":"ORDER_API","name":"别的名字","app_id":1}`)
	assert.Equal(t, float64(errors.CodeInvalidParam), resp["code"])
}
