package jail_bot

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cydxin/jail-bot/middleware"
	"github.com/cydxin/jail-bot/models"
	"github.com/cydxin/jail-bot/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// DefaultSweepInterval 到期扫描默认间隔
const DefaultSweepInterval = 60 * time.Second

type JailEngine struct {
	config *Config

	Store     *service.StoreService
	Lifecycle *service.LifecycleService
	Status    *service.StatusService
	Expiry    *service.ExpiryService
	Lock      *service.LockService

	checkRole middleware.RoleChecker
	sender    embedSender
	logger    *slog.Logger
	registry  *prometheus.Registry
	metrics   *service.Metrics
}

// NewEngine 创建实例
// 使用选项模式传入配置，Option回调
func NewEngine(opts ...Option) (*JailEngine, error) {
	c := &Config{SweepInterval: DefaultSweepInterval}
	for _, opt := range opts {
		opt(c)
	}
	if c.DB == nil {
		return nil, errors.New("jail_bot: DB is required")
	}
	if c.Guild.SuspendedRoleID == "" {
		return nil, errors.New("jail_bot: suspended role id is required")
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}

	e := &JailEngine{config: c, logger: c.Logger}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// 没有传 registry 时自建，避免重复注册到默认 registry
	e.registry = c.Registry
	if e.registry == nil {
		e.registry = prometheus.NewRegistry()
		e.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	e.metrics = service.NewMetrics(e.registry)

	guildGW, channelGW := c.guildGateway, c.channelGateway
	if c.Session != nil {
		gw := newDiscordGateway(c.Session)
		if guildGW == nil {
			guildGW = gw
		}
		if channelGW == nil {
			channelGW = gw
		}
	}
	if guildGW == nil {
		return nil, errors.New("jail_bot: discord session or gateways are required")
	}
	if s, ok := channelGW.(embedSender); ok {
		e.sender = s
	}

	// 初始化基础 Service，注入审计频道通知回调
	baseService := &service.Service{
		DB:     c.DB,
		RDB:    c.RDB,
		Logger: e.logger,
		Now:    c.Now,
		Config: service.GuildConfig{
			SuspendedRoleID:     c.Guild.SuspendedRoleID,
			LogChannelID:        c.Guild.LogChannelID,
			StatusChannelID:     c.Guild.StatusChannelID,
			BackgroundChannelID: c.Guild.BackgroundChannelID,
		},
		Guild:       guildGW,
		Channel:     channelGW,
		LogNotifier: e.notifyLogChannel,
		Metrics:     e.metrics,
	}

	// 初始化各个 Service
	e.Lock = service.NewLockService(c.RDB)
	e.Store = service.NewStoreService(baseService)
	e.Status = service.NewStatusService(baseService, e.Store)
	e.Lifecycle = service.NewLifecycleService(baseService, e.Store, e.Lock, e.Status)
	e.Expiry = service.NewExpiryService(baseService, e.Store, e.Lifecycle, e.Status, e.Lock)

	e.checkRole = middleware.RequireAllowedRole(&middleware.RoleAuthOptions{AllowedRoles: c.Guild.AllowedRoles})

	if c.Session != nil {
		e.registerHandlers(c.Session)
	}
	return e, nil
}

func (e *JailEngine) AutoMigrate() error {
	log.Println("AutoMigrate...")
	return e.config.DB.AutoMigrate(models.MigrateModels...)
}

// Registry 指标注册表，/metrics 用
func (e *JailEngine) Registry() *prometheus.Registry {
	return e.registry
}

// Open 建表并连接 gateway；Ready 事件里注册命令、刷新状态消息
func (e *JailEngine) Open(ctx context.Context) error {
	if err := e.AutoMigrate(); err != nil {
		return err
	}
	if e.config.Session == nil {
		return nil
	}
	e.config.Session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildMessages
	return e.config.Session.Open()
}

func (e *JailEngine) Close() error {
	if e.config.Session == nil {
		return nil
	}
	return e.config.Session.Close()
}

// refreshStatus 失败只记日志
func (e *JailEngine) refreshStatus(ctx context.Context, guildID string) {
	if err := e.Status.Refresh(ctx, guildID, e.config.Guild.StatusChannelID); err != nil {
		e.logger.Warn("refresh status message failed", "guild_id", guildID, "error", err)
	}
}
