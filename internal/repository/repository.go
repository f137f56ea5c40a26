package repository

import (
	"context"
	"errors"
	"strings"

	"student-router/internal/model"
)

// StudentRepository 学生记录存储接口
//
// 所有后端统一的错误约定：
//   - Get / Delete 找不到记录时返回 pkg/errors.ErrRecordNotFound
//   - Create 是原子的“不存在才创建”，冲突时返回 pkg/errors.ErrRecordExists
//   - ListByPrefix 按学号前缀过滤，空前缀返回全部，结果按创建时间、学号排序
type StudentRepository interface {
	Get(ctx context.Context, id string) (*model.StudentRecord, error)
	Put(ctx context.Context, record *model.StudentRecord) error
	Create(ctx context.Context, record *model.StudentRecord) error
	ListByPrefix(ctx context.Context, prefix string) ([]model.StudentRecord, error)
	Delete(ctx context.Context, id string) error
}

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Student StudentRepository

	closers []func() error
}

// NewRepository 创建 Repository 聚合，closers 在 Close 时逆序执行
func NewRepository(student StudentRepository, closers ...func() error) *Repository {
	return &Repository{Student: student, closers: closers}
}

// Close 释放底层连接
func (r *Repository) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ── KV 后端共用 ──

// studentKeyPrefix redis / badger 的记录键前缀
const studentKeyPrefix = "student:"

func studentKey(id string) string {
	return studentKeyPrefix + id
}

func hasIDPrefix(id, prefix string) bool {
	return prefix == "" || strings.HasPrefix(id, prefix)
}
