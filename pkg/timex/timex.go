// Package timex 毫秒时间戳与展示时间的转换
package timex

import (
	"strconv"
	"time"
)

// Layout 展示格式
const Layout = "2006-01-02 15:04:05"

// Time 本地时间，JSON 中输出为 Layout 格式字符串
type Time time.Time

// FromMillis 毫秒时间戳转 Time，ms <= 0 得到零值
func FromMillis(ms int64) Time {
	if ms <= 0 {
		return Time{}
	}
	return Time(time.UnixMilli(ms))
}

func (t Time) IsZero() bool     { return time.Time(t).IsZero() }
func (t Time) Unix() int64      { return time.Time(t).Unix() }
func (t Time) UnixMilli() int64 { return time.Time(t).UnixMilli() }
func (t Time) UnixMicro() int64 { return time.Time(t).UnixMicro() }
func (t Time) UnixNano() int64  { return time.Time(t).UnixNano() }

// String 零值输出 "-"
func (t Time) String() string {
	if t.IsZero() {
		return "-"
	}
	return time.Time(t).Local().Format(Layout)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(time.Time(t).Local().Format(Layout))), nil
}

func (t *Time) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*t = Time{}
		return nil
	}
	s, err := strconv.Unquote(s)
	if err != nil {
		return err
	}
	v, err := time.ParseInLocation(Layout, s, time.Local)
	if err != nil {
		return err
	}
	*t = Time(v)
	return nil
}
