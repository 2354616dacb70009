package cons

// 斜杠命令名
const (
	CommandJail       = "jail"
	CommandUnjail     = "unjail"
	CommandJailStatus = "jailstatus"
	CommandBackground = "background"
)

// 命令参数名
const (
	OptionMember   = "member"
	OptionDuration = "duration"
	OptionReason   = "reason"
)

// 组件 custom_id
const (
	CustomIDTimeRemaining = "jail:time_remaining" // 状态消息上的“剩余时间”按钮
)

// 状态消息文案
const (
	StatusTitle       = "Court Records"
	StatusButtonLabel = "Check my time remaining"
	StatusFooter      = "Press the button to see your own sentence"
)
