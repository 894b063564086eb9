// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import "time"

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	DefaultPageSize  int           // Page size when the caller passes none // 默认分页大小
	MaxPageSize      int           // Upper bound for a requested page size // 最大分页大小
	WatchLoadTimeout time.Duration // Bound on one detail reload of a watch // 监听重新加载的超时时间
}

// DefaultServiceConfig 默认服务配置
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		DefaultPageSize:  20,
		MaxPageSize:      100,
		WatchLoadTimeout: 10 * time.Second,
	}
}

// pageSize clamps n into (0, MaxPageSize]
func (c *ServiceConfig) pageSize(n int) int {
	if n <= 0 {
		n = c.DefaultPageSize
	}
	if n <= 0 {
		n = 20
	}
	if c.MaxPageSize > 0 && n > c.MaxPageSize {
		n = c.MaxPageSize
	}
	return n
}

func (c *ServiceConfig) watchLoadTimeout() time.Duration {
	if c.WatchLoadTimeout <= 0 {
		return 10 * time.Second
	}
	return c.WatchLoadTimeout
}
