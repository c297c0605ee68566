package middleware

import (
	"iamconsole/pkg/config"
	"iamconsole/pkg/response"

	"github.com/gin-gonic/gin"
)

// RejectInPreview 演示模式拦截：演示环境下拒绝所有写操作。
// 挂在认证之后、handler之前
func RejectInPreview() gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.GetConfig().Server.PreviewMode {
			response.Forbidden(c, "演示环境不允许该操作")
			c.Abort()
			return
		}
		c.Next()
	}
}
