package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"educareer/backend/config"
	"educareer/backend/internal/api/handler"
	"educareer/backend/internal/api/middleware"
	"educareer/backend/internal/api/router"
	"educareer/backend/internal/repository"
	"educareer/backend/internal/service"
	"educareer/backend/pkg/aiclient"
	"educareer/backend/pkg/database"
	"educareer/backend/pkg/events"
	"educareer/backend/pkg/jwt"
	applogger "educareer/backend/pkg/logger"
	"educareer/backend/pkg/mailer"
	"educareer/backend/pkg/redis"
	"educareer/backend/pkg/twilio"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("EDUCAREER_CONFIG"))
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

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	// 接口变量只在连接成功时赋值，避免 typed nil
	var (
		cache   service.Cache
		limiter middleware.RateLimiter
	)
	healthChecks := map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
	}
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单、登录限流与推荐缓存将不可用", zap.Error(err))
	} else {
		cache, limiter = rdb, rdb
		healthChecks["redis"] = rdb.Ping
	}

	// 5. 初始化 JWT 管理器与异步任务总线
	jwtMgr := jwt.NewManager(&cfg.Auth)
	bus := events.NewBus(&cfg.Events, logger)

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, service.Clients{
		Cache:  cache,
		AI:     aiclient.New(&cfg.AI, logger),
		Bus:    bus,
		Mailer: mailer.New(cfg.Mail, logger),
		SMS:    twilio.New(cfg.Twilio, logger),
	}, logger)
	if err := svc.RegisterTasks(bus); err != nil {
		logger.Fatal("注册异步任务失败", zap.Error(err))
	}

	h := handler.NewHandler(svc, handler.Options{
		MaxUploadBytes: cfg.Upload.MaxFileMB << 20,
		HealthChecks:   healthChecks,
	}, logger)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, router.Deps{Auth: svc.Auth, Limiter: limiter}, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second, // 上传需等待外部 OCR
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 先停任务总线，等待进行中的异步任务写完数据库
	if err := bus.Close(); err != nil {
		logger.Error("关闭任务总线异常", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("关闭数据库连接异常", zap.Error(err))
	}

	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("服务器已关闭")
}
