package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"student-router/internal/model"
	pkgerrors "student-router/pkg/errors"
)

const redisScanCount = 200

// studentRedisRepo StudentRepository 的 Redis 实现
// 每条记录一个 JSON 字符串键 student:<id>
type studentRedisRepo struct {
	rdb *goredis.Client
}

// NewStudentRedisRepo 创建基于 Redis 的 StudentRepository
func NewStudentRedisRepo(rdb *goredis.Client) StudentRepository {
	return &studentRedisRepo{rdb: rdb}
}

func (r *studentRedisRepo) Get(ctx context.Context, id string) (*model.StudentRecord, error) {
	data, err := r.rdb.Get(ctx, studentKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, pkgerrors.ErrRecordNotFound
		}
		return nil, err
	}
	return decodeRecord(data)
}

func (r *studentRedisRepo) Put(ctx context.Context, record *model.StudentRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化学生记录失败: %w", err)
	}
	return r.rdb.Set(ctx, studentKey(record.StudentID), data, 0).Err()
}

// Create SETNX
func (r *studentRedisRepo) Create(ctx context.Context, record *model.StudentRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化学生记录失败: %w", err)
	}
	ok, err := r.rdb.SetNX(ctx, studentKey(record.StudentID), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return pkgerrors.ErrRecordExists
	}
	return nil
}

// ListByPrefix SCAN 匹配键后按批 MGET，扫描期间被删除的键直接跳过
func (r *studentRedisRepo) ListByPrefix(ctx context.Context, prefix string) ([]model.StudentRecord, error) {
	pattern := studentKeyPrefix + escapeGlob(prefix) + "*"

	var (
		records []model.StudentRecord
		cursor  uint64
	)
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, pattern, redisScanCount).Result()
		if err != nil {
			return nil, err
		}
		if len(keys) > 0 {
			values, err := r.rdb.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, err
			}
			for i, v := range values {
				s, ok := v.(string)
				if !ok {
					continue
				}
				rec, err := decodeRecord([]byte(s))
				if err != nil {
					return nil, fmt.Errorf("键 %s: %w", keys[i], err)
				}
				records = append(records, *rec)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	// SCAN 可能重复返回同一个键
	records = dedupeRecords(records)
	sortRecords(records)
	return records, nil
}

func (r *studentRedisRepo) Delete(ctx context.Context, id string) error {
	n, err := r.rdb.Del(ctx, studentKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return pkgerrors.ErrRecordNotFound
	}
	return nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

func dedupeRecords(records []model.StudentRecord) []model.StudentRecord {
	seen := make(map[string]struct{}, len(records))
	out := records[:0]
	for _, rec := range records {
		if _, dup := seen[rec.StudentID]; dup {
			continue
		}
		seen[rec.StudentID] = struct{}{}
		out = append(out, rec)
	}
	return out
}

func decodeRecord(data []byte) (*model.StudentRecord, error) {
	var rec model.StudentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("解析学生记录失败: %w", err)
	}
	return &rec, nil
}
