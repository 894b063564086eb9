package task

import (
	"context"

	"github.com/dontknow492/Notes/internal/app"

	"go.uber.org/zap"
)

// OrphanReportTask 统计未被任何笔记引用的标签并更新指标
// 只统计不删除
type OrphanReportTask struct {
	app *app.App
}

func (t *OrphanReportTask) Name() string {
	return "OrphanTagReport"
}

func (t *OrphanReportTask) Spec() string {
	return t.app.Config().Maintenance.OrphanReport
}

func (t *OrphanReportTask) Run(ctx context.Context) error {
	n, err := t.app.TagService.CountOrphanTags(ctx)
	if err != nil {
		return err
	}
	t.app.Metrics.SetOrphanTags(n)
	t.app.Logger().Info("task log",
		zap.String("task", t.Name()),
		zap.Int64("orphanTags", n))
	return nil
}

// NewOrphanReportTask 创建孤立标签统计任务，未配置 cron 表达式时不启用
func NewOrphanReportTask(appContainer *app.App) (Task, error) {
	if appContainer.Config().Maintenance.OrphanReport == "" {
		return nil, nil
	}
	return &OrphanReportTask{app: appContainer}, nil
}

func init() {
	RegisterWithApp(NewOrphanReportTask)
}
