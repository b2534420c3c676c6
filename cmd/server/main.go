package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/config"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/api/handler"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/api/router"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/repository"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/scheduler"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/internal/service"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/ai"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/database"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/jwt"
	applogger "github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/logger"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/mailer"
	"github.com/cmhwp/Freshman-enrolment-Visualization-system-backend/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
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
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（验证码与 Token 黑名单依赖 Redis，连接失败直接退出）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}

	// 5. 初始化 JWT 管理器与外部客户端
	jwtMgr := jwt.NewManager(&cfg.Auth)
	mail := mailer.NewSMTPMailer(&cfg.Mail, logger)
	aiClient := ai.NewClient(&cfg.AI, logger)

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, rdb, mail, aiClient, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 8. 启动定时任务（报到截止清扫）
	sched := scheduler.New(cfg.Scheduler.SweepInterval, svc.Enrollment, logger)
	sched.Start()

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 停止定时任务
	sched.Stop()

	// 关闭数据库连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	rdb.Close()

	logger.Info("服务器已关闭")
}
