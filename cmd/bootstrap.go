package cmd

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// bootstrapLogger 配置加载之前使用的控制台日志器
// NOTES_LOG_LEVEL 可调整级别，例如 debug
var bootstrapLogger = newBootstrapLogger(os.Stderr, os.Getenv("NOTES_LOG_LEVEL"))

func newBootstrapLogger(w io.Writer, level string) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl, err := zapcore.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zapcore.InfoLevel
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(zapcore.AddSync(w)), lvl)
	return zap.New(core).Named("bootstrap")
}
