package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"student-router/internal/assignment"
	"student-router/internal/dto"
	"student-router/internal/service"
	"student-router/pkg/response"
)

// RegistrationHandler 学生分配模块 HTTP 处理器
type RegistrationHandler struct {
	registrationSvc service.RegistrationService
}

// NewRegistrationHandler 创建 RegistrationHandler
func NewRegistrationHandler(registrationSvc service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationSvc: registrationSvc}
}

// Assign 提交可选时间并获取分配
// POST /api/v1/assign
func (h *RegistrationHandler) Assign(c *gin.Context) {
	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.assign(c, &req, renderJSON)
}

// Counts 各 section 当前人数
// GET /api/v1/counts
func (h *RegistrationHandler) Counts(c *gin.Context) {
	counts, err := h.registrationSvc.Counts(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, counts)
}

// Schedule 课程安排（容量与习题课日期）
// GET /api/v1/schedule
func (h *RegistrationHandler) Schedule(c *gin.Context) {
	response.OK(c, h.registrationSvc.Schedule())
}

// ── 内部方法 ──

// renderFunc 输出响应体；JSON 与 JSONP 两种入口共用同一套错误映射
type renderFunc func(c *gin.Context, code int, obj interface{})

func renderJSON(c *gin.Context, code int, obj interface{}) {
	c.JSON(code, obj)
}

// renderJSONP 始终返回 200：<script> 加载无法读取状态码，结果只看 ok 字段
func renderJSONP(c *gin.Context, _ int, obj interface{}) {
	c.JSONP(http.StatusOK, obj)
}

func (h *RegistrationHandler) assign(c *gin.Context, req *dto.AssignRequest, render renderFunc) {
	result, err := h.registrationSvc.Assign(c.Request.Context(), req)
	if err != nil {
		code, body := assignErrorStatus(err)
		render(c, code, body)
		return
	}
	render(c, http.StatusOK, result)
}

// assignErrorStatus 将业务错误映射为 HTTP 状态码与响应体
func assignErrorStatus(err error) (int, response.Status) {
	var inf *assignment.InfeasibleError
	switch {
	case errors.As(err, &inf):
		return http.StatusConflict, response.InfeasibleStatus(inf.Where)
	case errors.Is(err, service.ErrInvalidStudentID):
		return http.StatusBadRequest, response.Status{Message: err.Error()}
	default:
		return http.StatusInternalServerError, response.Status{Message: response.InternalErrorMessage}
	}
}

// respondBindError 请求体超限返回 413，其余绑定/校验失败返回 400
func respondBindError(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		response.Fail(c, http.StatusRequestEntityTooLarge, "请求体过大")
		return
	}
	response.BadRequest(c, "参数校验失败")
}
