package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	DefaultHTTPAddr      = ":8080"
	DefaultSweepInterval = 60 * time.Second
)

// Config 进程配置
// 优先级：环境变量 > YAML 文件 > 默认值；.env 只在对应环境变量未设置时生效。
type Config struct {
	DiscordToken string `yaml:"discordToken" envconfig:"DISCORD_TOKEN"`
	// GuildID 非空时命令只注册到该服务器（立即生效），否则全局注册
	GuildID             string   `yaml:"guildId"             envconfig:"GUILD_ID"`
	SuspendedRoleID     string   `yaml:"suspendedRoleId"     envconfig:"SUSPENDED_ROLE_ID"`
	LogChannelID        string   `yaml:"logChannelId"        envconfig:"LOG_CHANNEL_ID"`
	StatusChannelID     string   `yaml:"statusChannelId"     envconfig:"STATUS_CHANNEL_ID"`
	BackgroundChannelID string   `yaml:"backgroundChannelId" envconfig:"BACKGROUND_CHANNEL_ID"`
	AllowedRoles        []string `yaml:"allowedRoles"        envconfig:"ALLOWED_ROLES"`

	DBDriver string `yaml:"dbDriver" envconfig:"DB_DRIVER"`
	// DBDSN 为空时使用 <可执行文件目录>/data/jailbot.db
	DBDSN string `yaml:"dbDsn" envconfig:"DB_DSN"`

	RedisAddr     string `yaml:"redisAddr"     envconfig:"REDIS_ADDR"`
	RedisPassword string `yaml:"redisPassword" envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redisDb"       envconfig:"REDIS_DB"`

	// HTTPAddr 为空时不启动 HTTP 服务
	HTTPAddr string `yaml:"httpAddr" envconfig:"HTTP_ADDR"`
	APIToken string `yaml:"apiToken" envconfig:"API_TOKEN"`

	SweepInterval time.Duration `yaml:"sweepInterval" envconfig:"SWEEP_INTERVAL"`
	Debug         bool          `yaml:"debug"         envconfig:"DEBUG"`
}

// Default 默认值
func Default() *Config {
	return &Config{
		DBDriver:      DriverSQLite,
		HTTPAddr:      DefaultHTTPAddr,
		SweepInterval: DefaultSweepInterval,
	}
}

// Load 读取 .env、YAML（configFile 为空时跳过）和环境变量
func Load(configFile string) (*Config, error) {
	// .env 不存在很正常
	_ = godotenv.Load()

	cfg := Default()
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	roles := make([]string, 0, len(c.AllowedRoles))
	for _, r := range c.AllowedRoles {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	c.AllowedRoles = roles
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	if c.DBDriver == "" {
		c.DBDriver = DriverSQLite
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
}

// Validate 启动前检查，一次列出所有缺失项
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DiscordToken) == "" {
		errs = append(errs, errors.New("DISCORD_TOKEN is required"))
	}
	required := []struct {
		key, val string
	}{
		{"SUSPENDED_ROLE_ID", c.SuspendedRoleID},
		{"LOG_CHANNEL_ID", c.LogChannelID},
		{"STATUS_CHANNEL_ID", c.StatusChannelID},
		{"BACKGROUND_CHANNEL_ID", c.BackgroundChannelID},
	}
	for _, r := range required {
		if r.val == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.key))
			continue
		}
		if !isSnowflake(r.val) {
			errs = append(errs, fmt.Errorf("%s must be a numeric id, got %q", r.key, r.val))
		}
	}
	if c.GuildID != "" && !isSnowflake(c.GuildID) {
		errs = append(errs, fmt.Errorf("GUILD_ID must be a numeric id, got %q", c.GuildID))
	}
	if len(c.AllowedRoles) == 0 {
		errs = append(errs, errors.New("ALLOWED_ROLES is required"))
	}
	for _, r := range c.AllowedRoles {
		if !isSnowflake(r) {
			errs = append(errs, fmt.Errorf("ALLOWED_ROLES contains non-numeric id %q", r))
		}
	}
	if err := c.ValidateStorage(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateStorage 只检查数据库配置，migrate / schema 子命令用
func (c *Config) ValidateStorage() error {
	switch c.DBDriver {
	case DriverSQLite:
	case DriverMySQL:
		if c.DBDSN == "" {
			return errors.New("DB_DSN is required when DB_DRIVER=mysql")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

func isSnowflake(s string) bool {
	if s == "" || len(s) > 20 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
