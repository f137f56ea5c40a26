package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"student-router/config"
	"student-router/internal/assignment"
	"student-router/internal/dto"
	"student-router/internal/model"
	"student-router/internal/repository"
	pkgerrors "student-router/pkg/errors"
	"student-router/pkg/jwt"
)

// ── 管理模块业务错误 ──

var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrNothingToUpdate    = errors.New("没有需要修改的字段")
)

// TokenBlacklist Token 黑名单（Redis 实现，未配置 Redis 时为 nil）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AdminService 管理端业务接口
type AdminService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout 将当前 Token 加入黑名单直至其自然过期
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	// Annotate 修改 locked / notes，不触碰已分配的 section
	Annotate(ctx context.Context, id string, req *dto.AnnotateStudentRequest) (*model.StudentRecord, error)
	// Audit 列出不再满足分配约束的记录
	Audit(ctx context.Context) (*dto.AuditResponse, error)
}

type adminService struct {
	cfg       *config.Config
	repo      *repository.Repository
	engine    *assignment.Engine
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAdminService 创建 AdminService 实例
func NewAdminService(
	cfg *config.Config,
	repo *repository.Repository,
	engine *assignment.Engine,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AdminService {
	return &adminService{
		cfg:       cfg,
		repo:      repo,
		engine:    engine,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *adminService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 未配置密码哈希时管理端登录关闭
	if s.cfg.Auth.AdminPasswordHash == "" {
		s.logger.Warn("auth.admin_password_hash 未配置，拒绝管理端登录")
		return nil, ErrInvalidCredentials
	}

	// 2. 校验用户名与密码 (bcrypt)
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.cfg.Auth.AdminUser)) == 1
	pwErr := bcrypt.CompareHashAndPassword([]byte(s.cfg.Auth.AdminPasswordHash), []byte(req.Password))
	if !userOK || pwErr != nil {
		s.logger.Info("管理端登录失败", zap.String("username", req.Username))
		return nil, ErrInvalidCredentials
	}

	// 3. 签发 Token
	token, expiresAt, err := s.jwtMgr.GenerateAccessToken(req.Username)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("管理端登录成功", zap.String("username", req.Username))
	return &dto.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int(time.Until(expiresAt).Seconds()),
	}, nil
}

func (s *adminService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil {
		s.logger.Warn("未配置 Redis，Token 无法加入黑名单", zap.String("jti", jti))
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("Token 加入黑名单失败", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}

func (s *adminService) Annotate(ctx context.Context, id string, req *dto.AnnotateStudentRequest) (*model.StudentRecord, error) {
	id = NormalizeStudentID(id)
	if id == "" {
		return nil, ErrInvalidStudentID
	}
	if req.Locked == nil && req.Notes == nil {
		return nil, ErrNothingToUpdate
	}

	record, err := s.repo.Student.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生记录失败", zap.String("student_id", id), zap.Error(err))
		return nil, err
	}

	if req.Locked != nil {
		record.Locked = *req.Locked
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}

	if err := s.repo.Student.Put(ctx, record); err != nil {
		s.logger.Error("更新学生记录失败", zap.String("student_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("学生记录已更新",
		zap.String("student_id", id),
		zap.Bool("locked", record.Locked),
	)
	return record, nil
}

func (s *adminService) Audit(ctx context.Context) (*dto.AuditResponse, error) {
	records, err := s.repo.Student.ListByPrefix(ctx, "")
	if err != nil {
		s.logger.Error("读取名单失败", zap.Error(err))
		return nil, err
	}

	violations := s.engine.Audit(records, assignment.Count(records))
	if violations == nil {
		violations = []assignment.Violation{}
	}
	if len(violations) > 0 {
		s.logger.Warn("名单审计发现问题", zap.Int("violations", len(violations)))
	}
	return &dto.AuditResponse{Total: len(records), Violations: violations}, nil
}
