package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"student-router/internal/model"
	pkgerrors "student-router/pkg/errors"
)

// studentGormRepo StudentRepository 的 PostgreSQL 实现
type studentGormRepo struct {
	db *gorm.DB
}

// NewStudentGormRepo 创建基于 GORM 的 StudentRepository
func NewStudentGormRepo(db *gorm.DB) StudentRepository {
	return &studentGormRepo{db: db}
}

func (r *studentGormRepo) Get(ctx context.Context, id string) (*model.StudentRecord, error) {
	var record model.StudentRecord
	err := r.db.WithContext(ctx).
		Where("student_id = ?", id).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *studentGormRepo) Put(ctx context.Context, record *model.StudentRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}},
			UpdateAll: true,
		}).
		Create(record).Error
}

// Create INSERT ... ON CONFLICT DO NOTHING，由主键保证同一学号只写入一次
func (r *studentGormRepo) Create(ctx context.Context, record *model.StudentRecord) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrRecordExists
	}
	return nil
}

func (r *studentGormRepo) ListByPrefix(ctx context.Context, prefix string) ([]model.StudentRecord, error) {
	var records []model.StudentRecord
	db := r.db.WithContext(ctx)
	if prefix != "" {
		db = db.Where(`student_id LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%")
	}
	if err := db.Order("created_at ASC, student_id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Delete 物理删除
func (r *studentGormRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("student_id = ?", id).
		Delete(&model.StudentRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrRecordNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
