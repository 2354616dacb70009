package models

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout 入库时间格式：固定 UTC、固定微秒位数，字符串比较即时间比较
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// legacyLayouts 旧数据里出现过的格式（按顺序尝试）
var legacyLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05.999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// FormatTime 统一写库格式
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime 读库时间；没有时区信息的旧数据按 UTC 处理
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	for _, layout := range legacyLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}

// NormalizeTime 旧格式转成 TimeLayout；已是标准格式或无法解析时 ok=false
func NormalizeTime(s string) (string, bool) {
	if _, err := time.Parse(TimeLayout, s); err == nil {
		return s, false
	}
	t, err := ParseTime(s)
	if err != nil {
		return s, false
	}
	return FormatTime(t), true
}
