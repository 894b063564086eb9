// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dontknow492/Notes/internal/dao"
	"github.com/dontknow492/Notes/internal/domain"
	"github.com/dontknow492/Notes/internal/metrics"
	"github.com/dontknow492/Notes/internal/service"
	"github.com/dontknow492/Notes/pkg/notify"
	"github.com/dontknow492/Notes/pkg/tracer"
	"github.com/dontknow492/Notes/pkg/workerpool"
	"github.com/dontknow492/Notes/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 并发控制组件
	workerPool    *workerpool.Pool
	writeQueueMgr *writequeue.Manager
	changes       *notify.Hub[dao.Change]

	Metrics *metrics.Metrics
	tracer  io.Closer

	// Repository 层
	NoteRepo domain.NoteRepository
	TagRepo  domain.TagRepository

	// Service 层
	NoteService service.NoteService
	TagService  service.TagService

	StartTime time.Time

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewApp 创建应用容器实例
// cfg、logger、db 均为必需
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:    cfg,
		logger:    logger,
		DB:        db,
		StartTime: time.Now(),
		Metrics:   metrics.New(),
	}

	// 追踪器，未配置 jaeger agent 时为 noop
	closer, err := tracer.Setup(cfg.GetTracerConfig())
	if err != nil {
		logger.Warn("tracer setup failed, continuing without tracing", zap.Error(err))
	} else {
		a.tracer = closer
	}

	wpConfig := workerpool.DefaultConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)

	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(&wqConfig, logger)
	a.changes = notify.NewHub[dao.Change]()

	dbConfig := cfg.GetDatabaseConfig()
	a.Dao = dao.New(db,
		dao.WithConfig(&dbConfig),
		dao.WithLogger(logger),
		dao.WithWriteQueueManager(a.writeQueueMgr),
		dao.WithChangeHub(a.changes),
	)

	a.NoteRepo = dao.NewNoteRepository(a.Dao)
	a.TagRepo = dao.NewTagRepository(a.Dao)

	a.NoteService = service.NewNoteService(a.NoteRepo, a.changes, cfg.GetServiceConfig(), logger, a.Metrics)
	a.TagService = service.NewTagService(a.TagRepo, logger, a.Metrics)

	logger.Info("App container initialized successfully",
		zap.String("database", dbConfig.Type),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity),
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers))

	return a, nil
}

// Close 释放数据库连接
func (a *App) Close() error {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// SubmitTask 提交任务到 Worker Pool 并等待结果
func (a *App) SubmitTask(ctx context.Context, task func(context.Context) error) error {
	return a.workerPool.Submit(ctx, task)
}

// SubmitTaskAsync 异步提交任务到 Worker Pool（不等待结果）
func (a *App) SubmitTaskAsync(ctx context.Context, task func(context.Context) error) error {
	return a.workerPool.SubmitAsync(ctx, task)
}

// VersionInfo 版本信息
type VersionInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GitTag    string `json:"gitTag"`
	BuildTime string `json:"buildTime"`
}

// Version 获取版本信息
func (a *App) Version() VersionInfo {
	return VersionInfo{
		Name:      Name,
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// Ping 检查数据库连接
func (a *App) Ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// IsProductionMode 是否为生产模式
func (a *App) IsProductionMode() bool {
	return a.config.Log.Production
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：Worker Pool -> Write Queue + 变更通知 -> Tracer
// 数据库由 Close 关闭
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownOnce.Do(func() {
		a.shutdownErr = a.shutdown(ctx)
	})
	return a.shutdownErr
}

func (a *App) shutdown(ctx context.Context) error {
	a.logger.Info("App container shutting down...")

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	var errs []error

	// 1. Worker Pool：停止接受新任务，等待现有任务完成
	if a.workerPool != nil {
		a.logger.Info("Shutting down worker pool...")
		if err := a.workerPool.Shutdown(ctx); err != nil {
			a.logger.Warn("Worker pool shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("worker pool shutdown: %w", err))
		}
	}

	// 2. 排空写队列并关闭变更通知，所有监听随之结束
	if a.Dao != nil {
		a.logger.Info("Shutting down write queue manager...")
		if err := a.Dao.Close(ctx); err != nil {
			a.logger.Warn("write queue manager shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("write queue manager shutdown: %w", err))
		}
	}

	// 3. 上报剩余 span
	if a.tracer != nil {
		if err := a.tracer.Close(); err != nil {
			a.logger.Warn("tracer close error", zap.Error(err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed")
	return nil
}
