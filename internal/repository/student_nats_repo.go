package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/errgroup"

	"student-router/internal/model"
	pkgerrors "student-router/pkg/errors"
)

const (
	natsKeyPrefix  = "student."
	natsFetchLimit = 16
)

// studentNATSRepo StudentRepository 的 NATS JetStream KV 实现
//
// NATS KV 键只允许 [-/_=.a-zA-Z0-9]，学号先做 base64url 编码再拼接前缀。
type studentNATSRepo struct {
	kv jetstream.KeyValue
}

// NewStudentNATSRepo 创建基于 NATS KV 的 StudentRepository
func NewStudentNATSRepo(kv jetstream.KeyValue) StudentRepository {
	return &studentNATSRepo{kv: kv}
}

func natsKey(id string) string {
	return natsKeyPrefix + base64.RawURLEncoding.EncodeToString([]byte(id))
}

func natsKeyToID(key string) (string, bool) {
	enc, ok := strings.CutPrefix(key, natsKeyPrefix)
	if !ok {
		return "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

func (r *studentNATSRepo) Get(ctx context.Context, id string) (*model.StudentRecord, error) {
	entry, err := r.kv.Get(ctx, natsKey(id))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, pkgerrors.ErrRecordNotFound
		}
		return nil, err
	}
	return decodeRecord(entry.Value())
}

func (r *studentNATSRepo) Put(ctx context.Context, record *model.StudentRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化学生记录失败: %w", err)
	}
	_, err = r.kv.Put(ctx, natsKey(record.StudentID), data)
	return err
}

// Create KV Create 仅在键不存在（或已删除）时写入
func (r *studentNATSRepo) Create(ctx context.Context, record *model.StudentRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("序列化学生记录失败: %w", err)
	}
	if _, err := r.kv.Create(ctx, natsKey(record.StudentID), data); err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return pkgerrors.ErrRecordExists
		}
		return err
	}
	return nil
}

// ListByPrefix 列出全部键，在客户端按学号前缀过滤后并发读取
func (r *studentNATSRepo) ListByPrefix(ctx context.Context, prefix string) ([]model.StudentRecord, error) {
	lister, err := r.kv.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return []model.StudentRecord{}, nil
		}
		return nil, err
	}

	var keys []string
	for key := range lister.Keys() {
		if id, ok := natsKeyToID(key); ok && hasIDPrefix(id, prefix) {
			keys = append(keys, key)
		}
	}

	var (
		mu      sync.Mutex
		records = make([]model.StudentRecord, 0, len(keys))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(natsFetchLimit)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			entry, err := r.kv.Get(gctx, key)
			if err != nil {
				// 列出后被删除
				if errors.Is(err, jetstream.ErrKeyNotFound) {
					return nil
				}
				return err
			}
			rec, err := decodeRecord(entry.Value())
			if err != nil {
				return fmt.Errorf("键 %s: %w", key, err)
			}
			mu.Lock()
			records = append(records, *rec)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortRecords(records)
	return records, nil
}

// Delete Purge 清除键及其历史，之后 Create 可重新写入
func (r *studentNATSRepo) Delete(ctx context.Context, id string) error {
	key := natsKey(id)
	if _, err := r.kv.Get(ctx, key); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return pkgerrors.ErrRecordNotFound
		}
		return err
	}
	return r.kv.Purge(ctx, key)
}
