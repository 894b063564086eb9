package task

import (
	"context"

	"github.com/dontknow492/Notes/internal/app"
)

// OptimizeTask 定期刷新数据库查询计划统计信息
type OptimizeTask struct {
	app *app.App
}

func (t *OptimizeTask) Name() string {
	return "DbOptimize"
}

func (t *OptimizeTask) Spec() string {
	return t.app.Config().Maintenance.Optimize
}

func (t *OptimizeTask) Run(ctx context.Context) error {
	return t.app.Dao.Optimize(ctx)
}

// NewOptimizeTask 创建统计刷新任务，未配置 cron 表达式时不启用
func NewOptimizeTask(appContainer *app.App) (Task, error) {
	if appContainer.Config().Maintenance.Optimize == "" {
		return nil, nil
	}
	return &OptimizeTask{app: appContainer}, nil
}

func init() {
	RegisterWithApp(NewOptimizeTask)
}
