package task

import (
	"sync"

	"github.com/dontknow492/Notes/internal/app"
)

// AppTaskFactory 基于应用容器创建任务
// 返回 nil 任务表示该任务未启用
type AppTaskFactory func(appContainer *app.App) (Task, error)

var (
	appTaskRegistry []AppTaskFactory
	registryMutex   sync.RWMutex
)

// RegisterWithApp 注册任务工厂，通常在任务文件的 init() 中调用
func RegisterWithApp(factory AppTaskFactory) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	appTaskRegistry = append(appTaskRegistry, factory)
}

// GetAppFactories 获取已注册任务工厂的副本
func GetAppFactories() []AppTaskFactory {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	factories := make([]AppTaskFactory, len(appTaskRegistry))
	copy(factories, appTaskRegistry)
	return factories
}
