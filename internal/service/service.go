package service

import (
	"go.uber.org/zap"

	"student-router/config"
	"student-router/internal/assignment"
	"student-router/internal/repository"
	"student-router/pkg/jwt"
	"student-router/pkg/metrics"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Registration RegistrationService
	Admin        AdminService
	Export       ExportService
}

// NewService 创建 Service 聚合
// blacklist 为 nil 时登出只记录日志
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	engine *assignment.Engine,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		Registration: NewRegistrationService(cfg, repo, engine, m, logger),
		Admin:        NewAdminService(cfg, repo, engine, jwtMgr, blacklist, logger),
		Export:       NewExportService(repo, engine, logger),
	}
}
