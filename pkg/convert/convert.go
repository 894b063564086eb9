// Package convert 提供请求参数和结构体之间的转换工具
package convert

import (
	"strconv"
	"strings"
)

// StrTo 字符串转换
type StrTo string

func (s StrTo) String() string {
	return strings.TrimSpace(string(s))
}

func (s StrTo) Int() (int, error) {
	return strconv.Atoi(s.String())
}

// MustInt 转换失败返回 0
func (s StrTo) MustInt() int {
	v, _ := s.Int()
	return v
}

func (s StrTo) Int64() (int64, error) {
	return strconv.ParseInt(s.String(), 10, 64)
}

// MustInt64 转换失败返回 0
func (s StrTo) MustInt64() int64 {
	v, _ := s.Int64()
	return v
}

// OptionalInt64 空字符串返回 nil，非法数字返回错误
// OptionalInt64 用于可选的 id 查询参数
func (s StrTo) OptionalInt64() (*int64, error) {
	if s.String() == "" {
		return nil, nil
	}
	v, err := s.Int64()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// OptionalString 空字符串返回 nil
func (s StrTo) OptionalString() *string {
	if string(s) == "" {
		return nil
	}
	v := string(s)
	return &v
}
