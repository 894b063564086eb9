package task

import (
	"github.com/dontknow492/Notes/internal/app"
	"github.com/dontknow492/Notes/pkg/safe_close"

	"go.uber.org/zap"
)

// Manager 任务管理器，负责创建和管理所有任务
type Manager struct {
	app       *app.App
	scheduler *Scheduler
	logger    *zap.Logger
}

// NewManager 创建任务管理器，任务在应用的 worker pool 中执行
func NewManager(appContainer *app.App, sc *safe_close.SafeClose) *Manager {
	return &Manager{
		app:       appContainer,
		scheduler: NewScheduler(appContainer.Logger(), sc, appContainer.SubmitTaskAsync),
		logger:    appContainer.Logger(),
	}
}

// RegisterTasks 注册所有已启用的任务
func (m *Manager) RegisterTasks() error {
	if !m.app.Config().Maintenance.Enabled {
		m.logger.Info("maintenance tasks are disabled")
		return nil
	}

	for _, factory := range GetAppFactories() {
		t, err := factory(m.app)
		if err != nil {
			m.logger.Warn("failed to create task", zap.Error(err))
			return err
		}
		if t == nil {
			continue
		}
		if err := m.scheduler.AddTask(t); err != nil {
			return err
		}
	}
	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start() {
	m.scheduler.Start()
}
