package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"student-router/config"
	"student-router/internal/api/handler"
	"student-router/internal/api/middleware"
	"student-router/internal/api/router"
	"student-router/internal/assignment"
	"student-router/internal/repository"
	"student-router/internal/service"
	"student-router/pkg/jwt"
	applogger "student-router/pkg/logger"
	"student-router/pkg/metrics"
	"student-router/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Backend),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 课程安排（启动时构建一次，之后只读）
	sched, err := assignment.NewSchedule(cfg.Schedule)
	if err != nil {
		logger.Fatal("课程安排配置无效", zap.Error(err))
	}
	engine := assignment.NewEngine(sched)

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	// store.backend=redis 时 Redis 为必需，由 repository.Open 报错
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与限流将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 打开学生记录存储
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	repo, err := repository.Open(ctx, cfg, rdb, logger)
	cancel()
	if err != nil {
		logger.Fatal("打开学生记录存储失败", zap.Error(err))
	}
	logger.Info("学生记录存储已就绪", zap.String("backend", cfg.Store.Backend))

	// 6. 依赖注入: Repository → Service → Handler
	// Redis 缺失时传入真正的 nil 接口，避免 typed-nil
	var (
		blacklist service.TokenBlacklist
		checker   middleware.BlacklistChecker
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist, checker, limiter = rdb, rdb, rdb
	}

	jwtMgr := jwt.NewManager(&cfg.Auth)
	m := metrics.New(nil)
	svc := service.NewService(cfg, repo, engine, jwtMgr, blacklist, m, logger)
	auth := middleware.NewAuthenticator(jwtMgr, checker, logger)
	h := handler.NewHandler(svc, auth.Authenticate)

	// 7. 初始化路由
	r, err := router.Setup(cfg, h, auth, limiter, m, logger)
	if err != nil {
		logger.Fatal("初始化路由失败", zap.Error(err))
	}

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭存储（数据库 / NATS / Badger）
	if err := repo.Close(); err != nil {
		logger.Error("关闭学生记录存储失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
