package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"student-router/internal/dto"
	"student-router/pkg/response"
)

// 兼容旧表单页的 action 名称
const (
	actionAssign = "assign"
	actionCounts = "counts"
	actionRoster = "roster"
	actionDelete = "delete"
)

// ActionHandler 兼容旧表单页的单入口接口
//
//	POST /api?action=assign   body 为 JSON（旧页面以 text/plain 发送）
//	GET  /api?action=assign   查询参数 + callback，JSONP 输出
//	GET  /api?action=counts
//	GET  /api?action=roster   需管理员 Token
//	POST /api?action=delete   body {"id": ...}，需管理员 Token
type ActionHandler struct {
	registration *RegistrationHandler
	admin        *AdminHandler
	authenticate func(*gin.Context) bool
}

// NewActionHandler 创建 ActionHandler
func NewActionHandler(registration *RegistrationHandler, admin *AdminHandler, authenticate func(*gin.Context) bool) *ActionHandler {
	return &ActionHandler{registration: registration, admin: admin, authenticate: authenticate}
}

// Dispatch 按 ?action= 分发
// GET/POST /api
func (h *ActionHandler) Dispatch(c *gin.Context) {
	switch c.Query("action") {
	case actionAssign:
		if c.Request.Method == http.MethodGet {
			h.assignFromQuery(c)
			return
		}
		h.assignFromBody(c)
	case actionCounts:
		h.registration.Counts(c)
	case actionRoster:
		if !h.requireAdmin(c) {
			return
		}
		h.admin.Roster(c)
	case actionDelete:
		if c.Request.Method != http.MethodPost {
			response.Fail(c, http.StatusMethodNotAllowed, "delete 只支持 POST")
			return
		}
		if !h.requireAdmin(c) {
			return
		}
		var req dto.DeleteStudentRequest
		if err := c.ShouldBindWith(&req, binding.JSON); err != nil {
			respondBindError(c, err)
			return
		}
		h.admin.deleteByID(c, req.ID)
	default:
		response.NotFound(c, "未知操作")
	}
}

// assignFromBody 忽略 Content-Type，按 JSON 解析请求体
func (h *ActionHandler) assignFromBody(c *gin.Context) {
	var req dto.AssignRequest
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil {
		respondBindError(c, err)
		return
	}
	h.registration.assign(c, &req, renderJSON)
}

// assignFromQuery 查询参数形式：class / recitations / ta 为逗号分隔列表
func (h *ActionHandler) assignFromQuery(c *gin.Context) {
	req := dto.AssignRequest{
		ID:    c.Query("id"),
		Name:  c.Query("name"),
		Email: c.Query("email"),
		Availability: &dto.AvailabilityRequest{
			Class:       splitList(c.Query("class")),
			Recitations: splitList(c.Query("recitations")),
			TA:          splitList(c.Query("ta")),
		},
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		renderJSONP(c, http.StatusBadRequest, response.Status{Message: "参数校验失败"})
		return
	}
	h.registration.assign(c, &req, renderJSONP)
}

func (h *ActionHandler) requireAdmin(c *gin.Context) bool {
	if h.authenticate == nil {
		response.Forbidden(c, "管理端接口未启用")
		return false
	}
	return h.authenticate(c)
}

func splitList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
