// Package tracer sets up the process-wide OpenTracing tracer.
// Package tracer 初始化全局 OpenTracing 追踪器
package tracer

import (
	"io"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// Config jaeger reporter settings
// Config jaeger 上报配置
type Config struct {
	ServiceName string
	// AgentHostPort jaeger agent address; empty disables reporting
	// AgentHostPort jaeger agent 地址，为空时不上报
	AgentHostPort string
	// SampleRate fraction of traces kept, 0..1
	// SampleRate 采样比例
	SampleRate float64
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a tracer and the closer that flushes it. Without an agent
// address the no-op tracer is returned so spans cost nothing.
// New 创建追踪器，未配置 agent 时返回空实现
func New(c Config) (opentracing.Tracer, io.Closer, error) {
	if c.AgentHostPort == "" {
		return opentracing.NoopTracer{}, nopCloser{}, nil
	}

	sampler := &jaegercfg.SamplerConfig{Type: jaeger.SamplerTypeConst, Param: 1}
	if c.SampleRate > 0 && c.SampleRate < 1 {
		sampler = &jaegercfg.SamplerConfig{Type: jaeger.SamplerTypeProbabilistic, Param: c.SampleRate}
	}

	cfg := jaegercfg.Configuration{
		ServiceName: c.ServiceName,
		Sampler:     sampler,
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans:            false,
			BufferFlushInterval: time.Second,
			LocalAgentHostPort:  c.AgentHostPort,
		},
	}

	t, closer, err := cfg.NewTracer()
	if err != nil {
		return nil, nil, errors.Wrap(err, "jaeger tracer")
	}
	return t, closer, nil
}

// Setup builds the tracer and installs it as the global one.
// Setup 创建追踪器并设为全局
func Setup(c Config) (io.Closer, error) {
	t, closer, err := New(c)
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(t)
	return closer, nil
}
