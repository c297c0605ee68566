package handlers

import (
	"strconv"

	"iamconsole/internal/query"
	"iamconsole/internal/services"
	"iamconsole/pkg/pagination"
	"iamconsole/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateResourceRequest struct {
	Code    string                 `json:"code" binding:"required"`
	Name    string                 `json:"name" binding:"required"`
	AppID   uint                   `json:"app_id" binding:"required"`
	Remark  string                 `json:"remark"`
	Actions []services.ActionInput `json:"actions"`
}

// ResourceHandler 权限资源接口
type ResourceHandler struct {
	service *services.ResourceService
}

func NewResourceHandler(service *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{
		service: service,
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建资源
func (h *ResourceHandler) Create(c *gin.Context) {
	var req CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	resource, err := h.service.Create(c.Request.Context(), operator(c), req.AppID, req.Code, req.Name, req.Remark, req.Actions)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, resource)
}

// GetByID 获取资源（含动作）
func (h *ResourceHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	resource, err := h.service.GetByID(id)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, resource)
}

// List 分页获取资源列表（支持筛选）
func (h *ResourceHandler) List(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)

	var q query.ResourceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	resources, total, err := h.service.GetWithPage(&q, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.SuccessWithPage(c, resources, pagination.NewPagination(pageParams.Page, pageParams.PageSize, total))
}

// Update 更新资源（动作集合整体替换）
func (h *ResourceHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req services.ResourceUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	resource, err := h.service.Update(c.Request.Context(), operator(c), id, &req)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, resource)
}

// Delete 删除资源
func (h *ResourceHandler) Delete(c *gin.Context) {
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

// GetActions 获取资源下的动作列表
func (h *ResourceHandler) GetActions(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	actions, err := h.service.FindActionsByResource(id)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, actions)
}

// ========== 公共方法 ==========

// parseID 解析路径中的目标id，格式错误直接返回BadRequest
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return 0, false
	}
	return uint(id), true
}

// operator 从登录上下文取操作人，用于审计字段
func operator(c *gin.Context) string {
	return c.GetString("username")
}
