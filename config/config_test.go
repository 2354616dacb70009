package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"DISCORD_TOKEN", "GUILD_ID", "SUSPENDED_ROLE_ID", "LOG_CHANNEL_ID", "STATUS_CHANNEL_ID",
	"BACKGROUND_CHANNEL_ID", "ALLOWED_ROLES", "DB_DRIVER", "DB_DSN", "REDIS_ADDR",
	"REDIS_PASSWORD", "REDIS_DB", "HTTP_ADDR", "API_TOKEN", "SWEEP_INTERVAL", "DEBUG",
}

// clearEnv 保证测试不受宿主环境影响；t.Setenv 结束后自动还原
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	// 避免读到仓库里的 .env
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, DefaultSweepInterval, cfg.SweepInterval)
	assert.Empty(t, cfg.AllowedRoles)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)

	yamlContent := `
discordToken: "from-yaml"
suspendedRoleId: "111"
logChannelId: "222"
statusChannelId: "333"
backgroundChannelId: "444"
allowedRoles: ["1", "2"]
sweepInterval: 30s
httpAddr: ":9090"
`
	file := filepath.Join(t.TempDir(), "jailbot.yaml")
	require.NoError(t, os.WriteFile(file, []byte(yamlContent), 0o644))

	t.Setenv("DISCORD_TOKEN", "from-env")
	t.Setenv("ALLOWED_ROLES", "10, 20 ,,30")

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.DiscordToken)
	assert.Equal(t, "111", cfg.SuspendedRoleID)
	assert.Equal(t, []string{"10", "20", "30"}, cfg.AllowedRoles)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("DISCORD_TOKEN=dotenv\nREDIS_DB=2\n"), 0o644))
	t.Cleanup(func() {
		_ = os.Unsetenv("DISCORD_TOKEN")
		_ = os.Unsetenv("REDIS_DB")
	})

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv", cfg.DiscordToken)
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{"DISCORD_TOKEN", "SUSPENDED_ROLE_ID", "LOG_CHANNEL_ID", "STATUS_CHANNEL_ID", "BACKGROUND_CHANNEL_ID", "ALLOWED_ROLES"} {
		assert.Contains(t, err.Error(), key)
	}

	cfg = &Config{
		DiscordToken:        "t",
		SuspendedRoleID:     "abc",
		LogChannelID:        "2",
		StatusChannelID:     "x",
		BackgroundChannelID: "4",
		AllowedRoles:        []string{"3"},
		DBDriver:            DriverMySQL,
	}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUSPENDED_ROLE_ID must be a numeric id")
	assert.Contains(t, err.Error(), "STATUS_CHANNEL_ID")
	assert.Contains(t, err.Error(), "DB_DSN is required")

	cfg.SuspendedRoleID = "1"
	cfg.StatusChannelID = ""
	cfg.DBDSN = "user:pass@tcp(127.0.0.1:3306)/jail"
	assert.ErrorContains(t, cfg.Validate(), "STATUS_CHANNEL_ID is required")

	cfg.StatusChannelID = "5"
	cfg.BackgroundChannelID = ""
	assert.ErrorContains(t, cfg.Validate(), "BACKGROUND_CHANNEL_ID is required")

	cfg.BackgroundChannelID = "4"
	assert.NoError(t, cfg.Validate())

	cfg.DBDriver = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "unsupported DB_DRIVER")
}

func TestValidateStorage(t *testing.T) {
	// 不需要 Discord 相关配置
	cfg := Default()
	assert.NoError(t, cfg.ValidateStorage())
	assert.Error(t, cfg.Validate())

	cfg.DBDriver = DriverMySQL
	assert.ErrorContains(t, cfg.ValidateStorage(), "DB_DSN is required")

	cfg.DBDSN = "user:pass@tcp(127.0.0.1:3306)/jail"
	assert.NoError(t, cfg.ValidateStorage())
}
