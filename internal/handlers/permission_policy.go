package handlers

import (
	"iamconsole/internal/query"
	"iamconsole/internal/services"
	"iamconsole/pkg/pagination"
	"iamconsole/pkg/response"

	"github.com/gin-gonic/gin"
)

// PolicyHandler 授权策略接口
type PolicyHandler struct {
	service *services.PolicyService
}

func NewPolicyHandler(service *services.PolicyService) *PolicyHandler {
	return &PolicyHandler{
		service: service,
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建策略
func (h *PolicyHandler) Create(c *gin.Context) {
	var req services.PolicyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	if _, err := h.service.Create(c.Request.Context(), operator(c), &req); err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, true)
}

// GetByID 获取策略
func (h *PolicyHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	policy, err := h.service.GetByID(id)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, policy)
}

// List 分页获取策略列表
func (h *PolicyHandler) List(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)

	var q query.PolicyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	policies, total, err := h.service.GetWithPage(&q, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.SuccessWithPage(c, policies, pagination.NewPagination(pageParams.Page, pageParams.PageSize, total))
}

// Update 更新策略
func (h *PolicyHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req services.PolicyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	if _, err := h.service.Update(c.Request.Context(), operator(c), id, &req); err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, true)
}

// Delete 删除策略
func (h *PolicyHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), operator(c), id); err != nil {
		response.AppError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", true)
}
