package service

import (
	"fmt"
	"strings"
	"time"
)

// FormatRemaining 剩余时间文本，如 "2 days, 1 hour, 5 minutes"
// 为零的单位省略；不足一分钟返回 "Less than a minute"。
func FormatRemaining(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if len(parts) == 0 {
		return "Less than a minute"
	}
	return strings.Join(parts, ", ")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// DiscordTimestamp <t:unix:F> 形式，客户端按本地时区渲染
func DiscordTimestamp(t time.Time, style string) string {
	if style == "" {
		style = "F"
	}
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}

// Mention 用户 @ 文本
func Mention(userID string) string {
	return "<@" + userID + ">"
}
