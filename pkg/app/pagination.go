package app

import (
	"github.com/dontknow492/Notes/pkg/convert"

	"github.com/gin-gonic/gin"
)

// PaginationConfig 分页配置
type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// GetPage 读取 page 参数，非法或缺省为 1
func GetPage(c *gin.Context) int {
	page := convert.StrTo(c.Query("page")).MustInt()
	if page <= 0 {
		return 1
	}
	return page
}

// GetPageSizeWithConfig 获取分页大小（使用注入的配置）
func GetPageSizeWithConfig(c *gin.Context, cfg PaginationConfig) int {
	pageSize := convert.StrTo(c.Query("pageSize")).MustInt()
	if pageSize <= 0 {
		return cfg.DefaultPageSize
	}
	if pageSize > cfg.MaxPageSize {
		return cfg.MaxPageSize
	}
	return pageSize
}
