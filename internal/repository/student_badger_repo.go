package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"student-router/internal/model"
	pkgerrors "student-router/pkg/errors"
)

// badgerConflictRetries 事务提交遇到 ErrConflict 时的重试次数
const badgerConflictRetries = 3

// studentBadgerRepo StudentRepository 的嵌入式 BadgerDB 实现（单机部署）
type studentBadgerRepo struct {
	db *badger.DB
}

// NewStudentBadgerRepo 创建基于 BadgerDB 的 StudentRepository
func NewStudentBadgerRepo(db *badger.DB) StudentRepository {
	return &studentBadgerRepo{db: db}
}

func (r *studentBadgerRepo) Get(ctx context.Context, id string) (*model.StudentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec *model.StudentRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(studentKey(id)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decodeErr error
			rec, decodeErr = decodeRecord(val)
			return decodeErr
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, pkgerrors.ErrRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *studentBadgerRepo) Put(ctx context.Context, record *model.StudentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化学生记录失败: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(studentKey(record.StudentID)), data)
	})
}

// Create 在同一事务内先读后写；并发写同一键时 badger 提交返回 ErrConflict，
// 重试后读到已存在的键即返回 ErrRecordExists
func (r *studentBadgerRepo) Create(ctx context.Context, record *model.StudentRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化学生记录失败: %w", err)
	}
	key := []byte(studentKey(record.StudentID))

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err = r.db.Update(func(txn *badger.Txn) error {
			_, getErr := txn.Get(key)
			if getErr == nil {
				return pkgerrors.ErrRecordExists
			}
			if !errors.Is(getErr, badger.ErrKeyNotFound) {
				return getErr
			}
			return txn.Set(key, data)
		})
		if errors.Is(err, badger.ErrConflict) && attempt < badgerConflictRetries {
			continue
		}
		return err
	}
}

func (r *studentBadgerRepo) ListByPrefix(ctx context.Context, prefix string) ([]model.StudentRecord, error) {
	records := make([]model.StudentRecord, 0)
	err := r.db.View(func(txn *badger.Txn) error {
		scan := []byte(studentKey(prefix))
		opts := badger.DefaultIteratorOptions
		opts.Prefix = scan
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(scan); it.ValidForPrefix(scan); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			err := item.Value(func(val []byte) error {
				rec, err := decodeRecord(val)
				if err != nil {
					return fmt.Errorf("键 %s: %w", item.Key(), err)
				}
				records = append(records, *rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortRecords(records)
	return records, nil
}

func (r *studentBadgerRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := []byte(studentKey(id))
	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return pkgerrors.ErrRecordNotFound
	}
	return err
}
