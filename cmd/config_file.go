package cmd

import (
	"os"

	"github.com/dontknow492/Notes/pkg/fileurl"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// configCandidates 未指定配置文件时按顺序查找
var configCandidates = []string{
	"config/config-dev.yaml",
	"config.yaml",
	"config/config.yaml",
}

// findConfig 返回第一个存在的配置文件，均不存在时返回空串
func findConfig(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, p := range configCandidates {
		if fileurl.IsFile(p) {
			return p
		}
	}
	return ""
}

// ensureConfig 查找配置文件，都不存在时写出默认配置
func ensureConfig(explicit string) (string, error) {
	if path := findConfig(explicit); path != "" {
		return path, nil
	}

	path := configCandidates[len(configCandidates)-1]
	bootstrapLogger.Warn("config file not found, creating default config")

	if err := fileurl.CreatePath(path, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "config file auto create error")
	}
	if err := os.WriteFile(path, []byte(configDefault), 0o644); err != nil {
		return "", errors.Wrap(err, "config file auto create writing error")
	}
	bootstrapLogger.Info("config file auto create successfully", zap.String("path", path))
	return path, nil
}
