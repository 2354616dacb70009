package jail_bot

import (
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cydxin/jail-bot/service"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// GuildConfig 服务器相关的 ID 配置（Engine级别）
type GuildConfig struct {
	// GuildID 非空时命令只注册到该服务器
	GuildID             string
	SuspendedRoleID     string
	LogChannelID        string
	StatusChannelID     string
	BackgroundChannelID string
	AllowedRoles        []string
}

type Config struct {
	DB      *gorm.DB
	RDB     *redis.Client
	Session *discordgo.Session
	Guild   GuildConfig

	Logger *slog.Logger

	// Registry 指标注册表；为空时 Engine 自建一个
	Registry *prometheus.Registry

	SweepInterval time.Duration
	Now           func() time.Time

	// APIToken 记录查询 HTTP 接口的 Bearer token，为空不校验
	APIToken string

	// guildGateway / channelGateway 替换 discordgo 实现（测试或其他传输）
	guildGateway   service.GuildGateway
	channelGateway service.ChannelGateway
}

type Option func(*Config)

func WithDB(db *gorm.DB) Option {
	return func(c *Config) {
		c.DB = db
	}
}

func WithRDB(RDB *redis.Client) Option {
	return func(c *Config) {
		c.RDB = RDB
	}
}

func WithSession(s *discordgo.Session) Option {
	return func(c *Config) {
		c.Session = s
	}
}

func WithGuildConfig(g GuildConfig) Option {
	return func(c *Config) {
		c.Guild = g
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = reg
	}
}

// WithSweepInterval 到期扫描间隔，默认 60s
func WithSweepInterval(d time.Duration) Option {
	return func(c *Config) {
		c.SweepInterval = d
	}
}

// WithClock 注入时钟
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}

func WithAPIToken(token string) Option {
	return func(c *Config) {
		c.APIToken = token
	}
}

// WithGateways 不走 discordgo session 时注入角色/频道实现
func WithGateways(g service.GuildGateway, ch service.ChannelGateway) Option {
	return func(c *Config) {
		c.guildGateway = g
		c.channelGateway = ch
	}
}
