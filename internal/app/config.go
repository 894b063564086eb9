// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dontknow492/Notes/internal/dao"
	"github.com/dontknow492/Notes/internal/service"
	"github.com/dontknow492/Notes/pkg/logger"
	"github.com/dontknow492/Notes/pkg/tracer"
	"github.com/dontknow492/Notes/pkg/util"
	"github.com/dontknow492/Notes/pkg/writequeue"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File        string            `yaml:"-"` // 配置文件路径，不序列化
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Database    DatabaseConfig    `yaml:"database"`
	App         AppSettings       `yaml:"app"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	RateLimit   RateLimitConfig   `yaml:"rate-limit"`
	Tracer      TracerConfig      `yaml:"tracer"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"warn"`
	// File 日志文件路径
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒），SSE 监听不受此限制
	WriteTimeout int `yaml:"write-timeout" default:"0"`
	// PrivateHttpListen 私有 HTTP 监听地址（metrics、pprof），为空不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9001"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型 sqlite | mysql | postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path string `yaml:"path" default:"storage/database/notes.sqlite3"`
	// UserName 用户名
	UserName string `yaml:"username"`
	// Password 密码
	Password string `yaml:"password"`
	// Host 主机
	Host string `yaml:"host"`
	// Port 端口，0 使用数据库默认端口
	Port int `yaml:"port"`
	// Name 数据库名
	Name string `yaml:"name"`
	// Charset 字符集
	Charset string `yaml:"charset"`
	// Replicas 只读副本 DSN 列表（mysql/postgres）
	Replicas []string `yaml:"replicas"`
	// MaxIdleConns 最大闲置连接数
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m、1h
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
	// BusyTimeout SQLite busy_timeout（毫秒）
	BusyTimeout int `yaml:"busy-timeout" default:"5000"`
	// Tracing 是否为 SQL 创建追踪 span
	Tracing bool `yaml:"tracing" default:"false"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultPageSize 默认页面大小
	DefaultPageSize int `yaml:"default-page-size" default:"20"`
	// MaxPageSize 最大页面大小
	MaxPageSize int `yaml:"max-page-size" default:"100"`
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
	// WatchLoadTimeout 笔记监听单次加载超时
	WatchLoadTimeout string `yaml:"watch-load-timeout" default:"10s"`

	// Write Queue 配置
	WriteQueueCapacity int    `yaml:"write-queue-capacity" default:"100"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" default:"30s"`
	WriteQueueIdleTime string `yaml:"write-queue-idle-time" default:"10m"`
}

// MaintenanceConfig 定时维护配置
type MaintenanceConfig struct {
	// Enabled 是否启用定时维护
	Enabled bool `yaml:"enabled" default:"true"`
	// Optimize 数据库统计信息刷新的 cron 表达式
	Optimize string `yaml:"optimize" default:"@every 6h"`
	// OrphanReport 孤立标签统计的 cron 表达式
	OrphanReport string `yaml:"orphan-report" default:"@daily"`
}

// RateLimitConfig 接口限流配置
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled" default:"false"`
	// FillInterval 令牌填充间隔
	FillInterval string `yaml:"fill-interval" default:"1s"`
	// Capacity 桶容量
	Capacity int64 `yaml:"capacity" default:"100"`
	// Quantum 每次填充令牌数
	Quantum int64 `yaml:"quantum" default:"100"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪
	Enabled bool `yaml:"enabled" default:"true"`
	// Header 追踪 ID 请求头名称，默认 X-Trace-ID
	Header string `yaml:"header" default:"X-Trace-ID"`
	// JaegerAgent jaeger agent 地址，为空不上报
	JaegerAgent string `yaml:"jaeger-agent"`
	// SampleRate 采样比例
	SampleRate float64 `yaml:"sample-rate" default:"1"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	// 设置默认值
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	if err := yaml.Unmarshal(file, c); err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// 默认值只在解析前设置一次，否则 YAML 中显式的 false 会被默认值 true 覆盖
	return c, realpath, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	if err := os.WriteFile(c.File, data, 0644); err != nil {
		return errors.Wrap(err, "write config file failed")
	}
	return nil
}

// GetWriteQueueConfig 获取 Write Queue 配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()

	if c.App.WriteQueueCapacity > 0 {
		cfg.QueueCapacity = c.App.WriteQueueCapacity
	}
	if timeout, err := util.ParseDuration(c.App.WriteQueueTimeout); err == nil && timeout > 0 {
		cfg.WriteTimeout = timeout
	}
	if idle, err := util.ParseDuration(c.App.WriteQueueIdleTime); err == nil && idle > 0 {
		cfg.IdleTimeout = idle
	}
	return cfg
}

// GetDatabaseConfig 转换为 dao 层数据库配置
func (c *AppConfig) GetDatabaseConfig() dao.DatabaseConfig {
	d := c.Database
	return dao.DatabaseConfig{
		Type:            d.Type,
		Path:            d.Path,
		UserName:        d.UserName,
		Password:        d.Password,
		Host:            d.Host,
		Port:            d.Port,
		Name:            d.Name,
		Charset:         d.Charset,
		Replicas:        d.Replicas,
		MaxIdleConns:    d.MaxIdleConns,
		MaxOpenConns:    d.MaxOpenConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
		BusyTimeout:     d.BusyTimeout,
		Tracing:         d.Tracing,
		RunMode:         c.Server.RunMode,
	}
}

// GetServiceConfig 获取服务层配置
func (c *AppConfig) GetServiceConfig() *service.ServiceConfig {
	cfg := service.DefaultServiceConfig()
	if c.App.DefaultPageSize > 0 {
		cfg.DefaultPageSize = c.App.DefaultPageSize
	}
	if c.App.MaxPageSize > 0 {
		cfg.MaxPageSize = c.App.MaxPageSize
	}
	if d, err := util.ParseDuration(c.App.WatchLoadTimeout); err == nil && d > 0 {
		cfg.WatchLoadTimeout = d
	}
	return cfg
}

// GetLoggerConfig 获取日志配置
func (c *AppConfig) GetLoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.Log.Level,
		File:       c.Log.File,
		Production: c.Log.Production,
	}
}

// GetTracerConfig 获取 jaeger 配置
func (c *AppConfig) GetTracerConfig() tracer.Config {
	return tracer.Config{
		ServiceName:   Name,
		AgentHostPort: c.Tracer.JaegerAgent,
		SampleRate:    c.Tracer.SampleRate,
	}
}

// GetContextTimeout 获取请求上下文超时时间
func (c *AppConfig) GetContextTimeout() time.Duration {
	if c.App.DefaultContextTimeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.App.DefaultContextTimeout) * time.Second
}

// GetRateLimitInterval 获取限流填充间隔
func (c *AppConfig) GetRateLimitInterval() time.Duration {
	if d, err := util.ParseDuration(c.RateLimit.FillInterval); err == nil && d > 0 {
		return d
	}
	return time.Second
}
