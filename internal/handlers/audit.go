package handlers

import (
	"iamconsole/internal/services"
	"iamconsole/pkg/pagination"
	"iamconsole/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuditHandler 审计日志接口
type AuditHandler struct {
	service *services.AuditService
}

func NewAuditHandler(service *services.AuditService) *AuditHandler {
	return &AuditHandler{
		service: service,
	}
}

// List 分页获取审计日志（支持按目标类型筛选）
func (h *AuditHandler) List(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	target := c.Query("target")

	logs, total, err := h.service.GetWithPage(target, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.SuccessWithPage(c, logs, pagination.NewPagination(pageParams.Page, pageParams.PageSize, total))
}
