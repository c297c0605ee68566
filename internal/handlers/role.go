package handlers

import (
	"iamconsole/internal/services"
	"iamconsole/pkg/pagination"
	"iamconsole/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateRoleRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// RoleHandler 角色接口
type RoleHandler struct {
	service *services.RoleService
}

func NewRoleHandler(service *services.RoleService) *RoleHandler {
	return &RoleHandler{
		service: service,
	}
}

// Create 创建角色
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	role, err := h.service.Create(operator(c), req.Code, req.Name, req.Description)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, role)
}

// GetByID 获取角色
func (h *RoleHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	role, err := h.service.GetByID(id)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.Success(c, role)
}

// List 分页获取角色列表（支持按状态筛选）
func (h *RoleHandler) List(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	status := c.Query("status")

	roles, total, err := h.service.GetWithPage(status, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.AppError(c, err)
		return
	}

	response.SuccessWithPage(c, roles, pagination.NewPagination(pageParams.Page, pageParams.PageSize, total))
}
