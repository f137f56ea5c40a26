package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"student-router/config"
	"student-router/pkg/badgerdb"
	"student-router/pkg/database"
	"student-router/pkg/natskv"
	pkgredis "student-router/pkg/redis"
)

// Open 按 store.backend 打开学生记录存储
// redis 后端复用调用方传入的连接（同时承担黑名单与限流），其余后端的连接由返回的 Repository 负责关闭
func Open(ctx context.Context, cfg *config.Config, rdb *pkgredis.Client, logger *zap.Logger) (*Repository, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		return NewRepository(NewStudentGormRepo(db), sqlDB.Close), nil

	case config.StoreBackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("store.backend=redis 需要可用的 Redis 连接")
		}
		return NewRepository(NewStudentRedisRepo(rdb.Raw())), nil

	case config.StoreBackendNATS:
		nc, kv, err := natskv.Connect(ctx, &cfg.NATS, logger)
		if err != nil {
			return nil, err
		}
		return NewRepository(NewStudentNATSRepo(kv), nc.Drain), nil

	case config.StoreBackendBadger:
		db, err := badgerdb.Open(&cfg.Badger, logger)
		if err != nil {
			return nil, err
		}
		return NewRepository(NewStudentBadgerRepo(db), db.Close), nil
	}

	return nil, fmt.Errorf("不支持的存储后端 %q", cfg.Store.Backend)
}
