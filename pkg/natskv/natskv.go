package natskv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"student-router/config"
)

// Connect 连接 NATS 并打开（必要时创建）学生记录 KV bucket
// 返回的 nats.Conn 由调用方负责关闭
func Connect(ctx context.Context, cfg *config.NATSConfig, logger *zap.Logger) (*nats.Conn, jetstream.KeyValue, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name("student-router"),
		nats.Timeout(timeout),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS 连接断开", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS 重新连接成功", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("NATS 连接失败: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("创建 JetStream 上下文失败: %w", err)
	}

	kv, err := EnsureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: "student assignment records",
		Replicas:    max(cfg.Replicas, 1),
		History:     1,
	}, 3)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	logger.Info("NATS KV 就绪", zap.String("url", cfg.URL), zap.String("bucket", cfg.Bucket))
	return nc, kv, nil
}

// EnsureBucket 创建或打开 KV bucket，多实例同时启动时按指数退避重试
func EnsureBucket(ctx context.Context, js jetstream.JetStream, kvCfg jetstream.KeyValueConfig, maxRetries int) (jetstream.KeyValue, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		kv, err := js.CreateKeyValue(ctx, kvCfg)
		if err == nil {
			return kv, nil
		}

		if errors.Is(err, jetstream.ErrBucketExists) {
			kv, openErr := js.KeyValue(ctx, kvCfg.Bucket)
			if openErr == nil {
				return kv, nil
			}
			lastErr = fmt.Errorf("bucket 已存在但打开失败: %w", openErr)
		} else {
			lastErr = err
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("创建 KV bucket 被取消: %w", ctx.Err())
		}

		// 10ms, 20ms, 40ms ...
		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("创建/打开 KV bucket %s 失败（重试 %d 次）: %w", kvCfg.Bucket, maxRetries, lastErr)
}
