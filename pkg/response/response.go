package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReasonNoFeasible 分配不可行时的 reason 字段
const ReasonNoFeasible = "no_feasible"

// Status 统一的状态响应结构
//
//	成功:     {"ok": true}
//	一般失败: {"ok": false, "message": "..."}
//	不可行:   {"ok": false, "reason": "no_feasible", "details": {"where": "class"}}
type Status struct {
	OK      bool        `json:"ok"`
	Message string      `json:"message,omitempty"`
	Reason  string      `json:"reason,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// InfeasibleDetails 不可行分配的详情
type InfeasibleDetails struct {
	Where string `json:"where"`
}

// ── 成功响应 ──

// OK 200，原样输出数据（counts / roster / schedule 等视图）
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Success 200 {"ok": true}
func Success(c *gin.Context) {
	c.JSON(http.StatusOK, Status{OK: true})
}

// ── 错误响应 ──

// Fail 通用失败响应
func Fail(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, Status{OK: false, Message: message})
}

// Infeasible 409 分配不可行，where 为第一个不可行的类别
func Infeasible(c *gin.Context, where string) {
	c.JSON(http.StatusConflict, InfeasibleStatus(where))
}

// InfeasibleStatus 不可行分配的响应体（JSONP 等非 c.JSON 渲染时使用）
func InfeasibleStatus(where string) Status {
	return Status{
		OK:      false,
		Reason:  ReasonNoFeasible,
		Details: InfeasibleDetails{Where: where},
	}
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, message string) {
	Fail(c, http.StatusForbidden, message)
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, message)
}

// TooManyRequests 429
func TooManyRequests(c *gin.Context, message string) {
	Fail(c, http.StatusTooManyRequests, message)
}

// InternalErrorMessage 500 响应的统一提示，不暴露内部错误细节
const InternalErrorMessage = "服务器内部错误"

// InternalError 500
func InternalError(c *gin.Context) {
	Fail(c, http.StatusInternalServerError, InternalErrorMessage)
}
