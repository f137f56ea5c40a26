package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"student-router/config"
	"student-router/internal/assignment"
	"student-router/internal/dto"
	"student-router/internal/model"
	"student-router/internal/repository"
	pkgerrors "student-router/pkg/errors"
	"student-router/pkg/metrics"
)

// ── 分配模块业务错误 ──

var (
	ErrInvalidStudentID = errors.New("学号不能为空")
	ErrStudentNotFound  = errors.New("学生记录不存在")
)

// MessageAlreadyExists 重复提交时响应中的 message
const MessageAlreadyExists = "already_exists"

// RegistrationService 学生分配业务接口
type RegistrationService interface {
	// Assign 首次提交时计算并保存分配；已有记录时原样返回（created=false）
	Assign(ctx context.Context, req *dto.AssignRequest) (*dto.AssignResponse, error)
	// Counts 由全部记录推导的各 section 人数
	Counts(ctx context.Context) (assignment.Counts, error)
	// Roster 全部学生记录
	Roster(ctx context.Context) ([]model.StudentRecord, error)
	// Delete 按学号物理删除
	Delete(ctx context.Context, id string) error
	// Schedule 课程安排视图
	Schedule() *dto.ScheduleResponse
}

type registrationService struct {
	cfg     *config.Config
	repo    *repository.Repository
	engine  *assignment.Engine
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewRegistrationService 创建 RegistrationService 实例
func NewRegistrationService(
	cfg *config.Config,
	repo *repository.Repository,
	engine *assignment.Engine,
	m *metrics.Metrics,
	logger *zap.Logger,
) RegistrationService {
	return &registrationService{
		cfg:     cfg,
		repo:    repo,
		engine:  engine,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// NormalizeStudentID 去除首尾空白并转小写（学号在表单中按小写录入）
func NormalizeStudentID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// ═══════════════════════════════════════════════════════════
// Assign
// ═══════════════════════════════════════════════════════════
//
// 流程：
//  1. 规范化学号，为空直接拒绝（不访问存储）
//  2. 已有记录 → 原样返回首次分配结果
//  3. 读取全部记录推导 counts，调用分配引擎
//  4. 原子创建；若并发请求抢先写入，则返回对方写入的记录

func (s *registrationService) Assign(ctx context.Context, req *dto.AssignRequest) (*dto.AssignResponse, error) {
	id := NormalizeStudentID(req.ID)
	if id == "" {
		return nil, ErrInvalidStudentID
	}

	existing, err := s.repo.Student.Get(ctx, id)
	switch {
	case err == nil:
		s.metrics.AssignOutcome(metrics.OutcomeReplayed)
		return replay(existing), nil
	case !errors.Is(err, pkgerrors.ErrRecordNotFound):
		return nil, s.assignFailure("get", err, zap.String("student_id", id))
	}

	records, err := s.repo.Student.ListByPrefix(ctx, "")
	if err != nil {
		return nil, s.assignFailure("list", err)
	}
	s.metrics.RosterSize(len(records))

	var avail model.Availability
	if req.Availability != nil {
		avail = req.Availability.ToModel()
	}

	result, err := s.engine.Assign(id, avail, assignment.Count(records))
	if err != nil {
		var inf *assignment.InfeasibleError
		if errors.As(err, &inf) {
			s.metrics.Infeasible(inf.Where)
			s.logger.Info("分配不可行",
				zap.String("student_id", id),
				zap.String("where", inf.Where),
			)
		}
		return nil, err
	}

	record := &model.StudentRecord{
		StudentID:    id,
		Timestamp:    s.now().UTC(),
		Name:         strings.TrimSpace(req.Name),
		Email:        s.defaultEmail(id, req.Email),
		Availability: datatypes.NewJSONType(avail),
		Class:        result.Class,
		RecA:         result.RecA,
		RecB:         result.RecB,
		TA:           result.TA,
	}

	if err := s.repo.Student.Create(ctx, record); err != nil {
		if !errors.Is(err, pkgerrors.ErrRecordExists) {
			return nil, s.assignFailure("create", err, zap.String("student_id", id))
		}
		// 同一学号并发提交，以先写入者为准
		winner, getErr := s.repo.Student.Get(ctx, id)
		if getErr != nil {
			return nil, s.assignFailure("get", getErr, zap.String("student_id", id))
		}
		s.metrics.AssignOutcome(metrics.OutcomeReplayed)
		s.logger.Info("并发提交冲突，返回已有分配", zap.String("student_id", id))
		return replay(winner), nil
	}

	s.metrics.AssignOutcome(metrics.OutcomeCreated)
	s.logger.Info("分配成功",
		zap.String("student_id", id),
		zap.String("class", result.Class),
		zap.String("rec_a", result.RecA),
		zap.String("rec_b", result.RecB),
		zap.String("ta", result.TA),
	)

	return &dto.AssignResponse{OK: true, Assignment: result, Created: true}, nil
}

func replay(r *model.StudentRecord) *dto.AssignResponse {
	return &dto.AssignResponse{
		OK:         true,
		Assignment: assignment.FromRecord(r),
		Created:    false,
		Message:    MessageAlreadyExists,
	}
}

func (s *registrationService) defaultEmail(id, email string) string {
	email = strings.TrimSpace(email)
	if email == "" && s.cfg.Auth.EmailDomain != "" {
		return id + "@" + s.cfg.Auth.EmailDomain
	}
	return email
}

// ── 只读视图 ──

func (s *registrationService) Counts(ctx context.Context) (assignment.Counts, error) {
	records, err := s.Roster(ctx)
	if err != nil {
		return assignment.Counts{}, err
	}
	return assignment.Count(records), nil
}

func (s *registrationService) Roster(ctx context.Context) ([]model.StudentRecord, error) {
	records, err := s.repo.Student.ListByPrefix(ctx, "")
	if err != nil {
		return nil, s.storeFailure("list", err)
	}
	s.metrics.RosterSize(len(records))
	return records, nil
}

func (s *registrationService) Delete(ctx context.Context, id string) error {
	id = NormalizeStudentID(id)
	if id == "" {
		return ErrInvalidStudentID
	}

	if err := s.repo.Student.Delete(ctx, id); err != nil {
		if errors.Is(err, pkgerrors.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return s.storeFailure("delete", err, zap.String("student_id", id))
	}

	s.logger.Info("学生记录已删除", zap.String("student_id", id))
	return nil
}

func (s *registrationService) Schedule() *dto.ScheduleResponse {
	sched := s.engine.Schedule()
	resp := &dto.ScheduleResponse{
		Capacities:  make(map[string]map[string]int, len(assignment.Categories)),
		Recitations: make(map[string]dto.RecitationDayView),
	}
	for _, cat := range assignment.Categories {
		resp.Capacities[string(cat)] = sched.Capacities(cat)
	}
	for key, day := range sched.Days() {
		resp.Recitations[key] = dto.RecitationDayView{Day: string(day)}
	}
	return resp
}

// storeFailure 记录存储失败并包装错误
func (s *registrationService) storeFailure(op string, err error, fields ...zap.Field) error {
	s.metrics.StoreError(op)
	s.logger.Error("学生记录存储操作失败", append(fields, zap.String("op", op), zap.Error(err))...)
	return fmt.Errorf("存储操作 %s 失败: %w", op, err)
}

func (s *registrationService) assignFailure(op string, err error, fields ...zap.Field) error {
	s.metrics.AssignOutcome(metrics.OutcomeError)
	return s.storeFailure(op, err, fields...)
}
