// Package task 定时维护任务
package task

import "context"

// Task 定时任务
type Task interface {
	Name() string                  // 任务名称
	Spec() string                  // cron 表达式，支持 @every 1h、@daily
	Run(ctx context.Context) error // 执行任务
}

// Submitter 将任务交给后台执行，调用方不等待结果
type Submitter func(ctx context.Context, fn func(context.Context) error) error
