package service

import "strings"

// InvalidDuration 无法识别的时长
const InvalidDuration int64 = -1

// DurationChoice 斜杠命令的一个时长选项
// Name 是命令里显示的短名，Label 原样存库并用于展示。
type DurationChoice struct {
	Name    string
	Label   string
	Seconds int64
}

var durationChoices = []DurationChoice{
	{Name: "1h", Label: "1 hour", Seconds: 3600},
	{Name: "12h", Label: "12 hours", Seconds: 43200},
	{Name: "1d", Label: "1 day", Seconds: 86400},
	{Name: "3d", Label: "3 days", Seconds: 259200},
	{Name: "7d", Label: "7 days", Seconds: 604800},
	{Name: "30d", Label: "30 days", Seconds: 2592000},
}

// DurationChoices 按命令里的顺序返回全部选项（副本）
func DurationChoices() []DurationChoice {
	out := make([]DurationChoice, len(durationChoices))
	copy(out, durationChoices)
	return out
}

// ResolveDuration label 或短名 -> 秒数
func ResolveDuration(label string) (int64, bool) {
	c, ok := lookupDuration(label)
	if !ok {
		return InvalidDuration, false
	}
	return c.Seconds, true
}

// CanonicalDurationLabel 短名转成存库用的 label
func CanonicalDurationLabel(label string) (string, bool) {
	c, ok := lookupDuration(label)
	if !ok {
		return "", false
	}
	return c.Label, true
}

func lookupDuration(label string) (DurationChoice, bool) {
	label = strings.TrimSpace(label)
	for _, c := range durationChoices {
		if c.Label == label || c.Name == label {
			return c, true
		}
	}
	return DurationChoice{}, false
}
