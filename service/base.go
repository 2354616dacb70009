package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// GuildConfig 服务器相关的固定 ID（来自配置）
type GuildConfig struct {
	SuspendedRoleID     string
	LogChannelID        string
	StatusChannelID     string
	BackgroundChannelID string
}

// Service 基础服务，包含数据库、外部依赖和配置
type Service struct {
	DB  *gorm.DB
	RDB *redis.Client // 可选；为空时锁退化为进程内

	Logger *slog.Logger
	// Now 时钟，测试里注入固定时间
	Now func() time.Time

	Config GuildConfig

	// Guild / Channel 由 engine 注入 discordgo 实现，避免 service 依赖 session
	Guild   GuildGateway
	Channel ChannelGateway

	// LogNotifier 审计频道通知回调（尽力而为，不影响主流程）
	LogNotifier func(ctx context.Context, ev AuditEvent)

	Metrics *Metrics
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *Service) notify(ctx context.Context, ev AuditEvent) {
	if s.LogNotifier == nil {
		return
	}
	s.LogNotifier(ctx, ev)
}

// dbCtx 每次操作绑定 ctx
func (s *Service) dbCtx(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}
