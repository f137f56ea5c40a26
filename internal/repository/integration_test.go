//go:build integration

package repository

import (
	"context"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"student-router/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// PostgreSQL / Redis 后端（需要外部服务）
//
//	TEST_DATABASE_DSN=... TEST_REDIS_ADDR=... go test -tags integration ./internal/repository/
// ═══════════════════════════════════════════════════════════

func TestStudentGormRepo_Integration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=postgres password=postgres dbname=student_router_test sslmode=disable TimeZone=UTC"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("无法连接测试数据库: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.RunMigrations(sqlDB, zap.NewNop()))

	runStudentRepositoryContract(t, func(t *testing.T) StudentRepository {
		require.NoError(t, db.Exec("TRUNCATE TABLE student_records").Error)
		return NewStudentGormRepo(db)
	})
}

func TestStudentRedisRepo_Integration(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6380"
	}

	rdb := goredis.NewClient(&goredis.Options{Addr: addr, DB: 15})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("无法连接测试 Redis: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	runStudentRepositoryContract(t, func(t *testing.T) StudentRepository {
		require.NoError(t, rdb.FlushDB(context.Background()).Err())
		return NewStudentRedisRepo(rdb)
	})
}
