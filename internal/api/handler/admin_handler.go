package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"student-router/internal/dto"
	"student-router/internal/service"
	"student-router/pkg/response"
)

// AdminHandler 管理端 HTTP 处理器
type AdminHandler struct {
	adminSvc        service.AdminService
	registrationSvc service.RegistrationService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(adminSvc service.AdminService, registrationSvc service.RegistrationService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, registrationSvc: registrationSvc}
}

// Login 管理员登录
// POST /api/v1/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.adminSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "用户名或密码错误")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Logout 管理员登出，当前 Token 加入黑名单
// POST /api/v1/admin/logout
func (h *AdminHandler) Logout(c *gin.Context) {
	jti, expiresAt, ok := MustGetToken(c)
	if !ok {
		return
	}

	if err := h.adminSvc.Logout(c.Request.Context(), jti, expiresAt); err != nil {
		response.InternalError(c)
		return
	}

	response.Success(c)
}

// Roster 全部学生记录
// GET /api/v1/admin/roster
func (h *AdminHandler) Roster(c *gin.Context) {
	records, err := h.registrationSvc.Roster(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, records)
}

// DeleteStudent 删除学生记录
// DELETE /api/v1/admin/students/:id
func (h *AdminHandler) DeleteStudent(c *gin.Context) {
	h.deleteByID(c, c.Param("id"))
}

// AnnotateStudent 修改锁定状态 / 备注
// PATCH /api/v1/admin/students/:id
func (h *AdminHandler) AnnotateStudent(c *gin.Context) {
	var req dto.AnnotateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	record, err := h.adminSvc.Annotate(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, record)
}

// Audit 名单审计
// GET /api/v1/admin/audit
func (h *AdminHandler) Audit(c *gin.Context) {
	result, err := h.adminSvc.Audit(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// ── 内部方法 ──

func (h *AdminHandler) deleteByID(c *gin.Context, id string) {
	if err := h.registrationSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleAdminError(c, err)
		return
	}
	response.Success(c)
}

// handleAdminError 将管理端业务错误映射为 HTTP 响应
func (h *AdminHandler) handleAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidStudentID):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrNothingToUpdate):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, err.Error())
	default:
		response.InternalError(c)
	}
}
