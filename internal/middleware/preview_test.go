package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"iamconsole/pkg/config"
	"iamconsole/pkg/errors"
	"iamconsole/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRejectInPreview(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := config.GetConfig()
	original := cfg.Server.PreviewMode
	defer func() { cfg.Server.PreviewMode = original }()

	r := gin.New()
	r.POST("/mutate", RejectInPreview(), func(c *gin.Context) {
		response.Success(c, true)
	})

	call := func() float64 {
		req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp["code"].(float64)
	}

	// 正常模式放行
	cfg.Server.PreviewMode = false
	assert.Equal(t, float64(errors.CodeSuccess), call())

	// 演示模式拒绝写操作
	cfg.Server.PreviewMode = true
	assert.Equal(t, float64(errors.CodeForbidden), call())
}
