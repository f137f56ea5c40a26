package handler

import (
	"github.com/gin-gonic/gin"

	"student-router/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Registration *RegistrationHandler
	Admin        *AdminHandler
	Export       *ExportHandler
	Action       *ActionHandler
}

// NewHandler 创建 Handler 聚合
// authenticate 供 ?action= 接口在 roster / delete 时内联校验管理员 Token
func NewHandler(svc *service.Service, authenticate func(*gin.Context) bool) *Handler {
	reg := NewRegistrationHandler(svc.Registration)
	admin := NewAdminHandler(svc.Admin, svc.Registration)
	return &Handler{
		Registration: reg,
		Admin:        admin,
		Export:       NewExportHandler(svc.Export),
		Action:       NewActionHandler(reg, admin, authenticate),
	}
}
