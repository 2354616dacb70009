package service

import (
	"context"
	"time"
)

// Member 服务器成员（只保留用到的字段）
type Member struct {
	UserID      string
	Username    string
	DisplayName string
	AvatarURL   string
	Roles       []string
	Bot         bool
}

// Role 服务器角色
type Role struct {
	ID      string
	Name    string
	Managed bool // booster / 集成角色，API 不能增删
}

// GuildGateway 角色与成员操作，由 engine 用 discordgo 实现
//
// Member 在成员不存在时返回 ErrMemberNotFound；
// 平台拒绝（403）时返回的错误需能 errors.Is(err, ErrForbidden)。
type GuildGateway interface {
	Member(ctx context.Context, guildID, userID string) (*Member, error)
	Roles(ctx context.Context, guildID string) ([]Role, error)
	RemoveRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error
	AddRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error
}

// StatusMessage 状态频道里的置底消息
type StatusMessage struct {
	Title       string
	Description string
	Footer      string
	ButtonLabel string
	ButtonID    string
	Timestamp   time.Time
}

// ChannelGateway 频道消息发送与删除
type ChannelGateway interface {
	SendStatus(ctx context.Context, channelID string, msg StatusMessage) (messageID string, err error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// AuditEvent 审计频道通知内容
type AuditEvent struct {
	Action      string // models.ActionSuspended / ActionReleased / ActionExpired
	GuildID     string
	UserID      string
	PerformedBy string // 自动释放时为 models.SystemActorID
	Duration    string
	Reason      string
	TimeServed  string // 仅自动释放
	AvatarURL   string
	At          time.Time
}
