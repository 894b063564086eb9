// Package fileurl 文件路径工具
package fileurl

import (
	"os"
	"path/filepath"
)

// IsFile 路径存在且为文件
func IsFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

// IsDir 路径存在且为目录
func IsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// IsExist 判断所给路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	if err != nil {
		return os.IsExist(err)
	}
	return true
}

// CreatePath 为文件路径 dst 创建上级目录
func CreatePath(dst string, perm os.FileMode) error {
	return EnsureDir(filepath.Dir(dst), perm)
}

// EnsureDir 创建目录，dir 为空或当前目录时不做任何事
func EnsureDir(dir string, perm os.FileMode) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, perm)
}
