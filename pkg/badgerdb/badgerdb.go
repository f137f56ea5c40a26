package badgerdb

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"student-router/config"
)

// zapLogger 将 badger 内部日志转到 zap
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l *zapLogger) Errorf(format string, args ...interface{})   { l.s.Errorf(format, args...) }
func (l *zapLogger) Warningf(format string, args ...interface{}) { l.s.Warnf(format, args...) }
func (l *zapLogger) Infof(format string, args ...interface{})    { l.s.Infof(format, args...) }
func (l *zapLogger) Debugf(format string, args ...interface{})   { l.s.Debugf(format, args...) }

// Open 打开嵌入式 BadgerDB
// in_memory=true 时不落盘（测试与单机演示用），否则 path 必填
func Open(cfg *config.BadgerConfig, logger *zap.Logger) (*badger.DB, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("badger.path 不能为空")
		}
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("创建 BadgerDB 目录 %s 失败: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if logger != nil {
		opts = opts.WithLogger(&zapLogger{s: logger.Named("badger").Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("打开 BadgerDB 失败: %w", err)
	}

	if logger != nil {
		logger.Info("BadgerDB 打开成功", zap.String("path", cfg.Path), zap.Bool("in_memory", cfg.InMemory))
	}
	return db, nil
}
