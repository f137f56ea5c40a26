package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-router/config"
	"student-router/internal/api/handler"
	"student-router/internal/api/middleware"
	"student-router/pkg/jwt"
	"student-router/pkg/metrics"
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时提交接口不限流
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	auth *middleware.Authenticator,
	limiter middleware.RateLimiter,
	m *metrics.Metrics,
	logger *zap.Logger,
) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 运维 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	assignLimit := middleware.RateLimit(limiter, cfg.RateLimit.AssignLimit, cfg.RateLimit.AssignWindow)

	// ── 旧表单页单入口 ──
	r.GET("/api", assignLimit, h.Action.Dispatch)
	r.POST("/api", assignLimit, h.Action.Dispatch)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 学生端（无需认证）
		v1.POST("/assign", assignLimit, h.Registration.Assign)
		v1.GET("/counts", h.Registration.Counts)
		v1.GET("/schedule", h.Registration.Schedule)

		// 管理端
		v1.POST("/admin/login", assignLimit, h.Admin.Login)

		admin := v1.Group("/admin")
		admin.Use(auth.JWTAuth(), middleware.RoleAuth(jwt.RoleAdmin))
		{
			admin.POST("/logout", h.Admin.Logout)
			admin.GET("/roster", h.Admin.Roster)
			admin.DELETE("/students/:id", h.Admin.DeleteStudent)
			admin.PATCH("/students/:id", h.Admin.AnnotateStudent)
			admin.GET("/audit", h.Admin.Audit)
			admin.GET("/export", h.Export.ExportRoster)
		}
	}

	return r, nil
}
