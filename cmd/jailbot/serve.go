package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	jailbot "github.com/cydxin/jail-bot"
	"github.com/cydxin/jail-bot/config"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot (default)",
		RunE:  serveRun,
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and rewrite legacy timestamps",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := commonRun(cfg)
			db, closeDB, err := openStorage(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := jailbot.MigrateDB(cmd.Context(), db)
			if err != nil {
				return err
			}
			logger.Info("timestamps normalized", "rows", n)
			return nil
		},
	}
}

func schemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the table layout for the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, closeDB, err := openStorage(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			tables, err := jailbot.DescribeSchema(db)
			if err != nil {
				return err
			}
			for _, t := range tables {
				fmt.Printf("%s\n", t.Table)
				for _, c := range t.Columns {
					fmt.Printf("  %-16s %-20s %s\n", c.DBName, c.SQLType, c.Tag)
				}
			}
			return nil
		},
	}
}

// openStorage 只打开数据库，不校验 Discord 相关配置
func openStorage(cfg *config.Config) (*gorm.DB, func(), error) {
	if err := cfg.ValidateStorage(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	db, err := jailbot.OpenDB(jailbot.DBOptions{Driver: cfg.DBDriver, DSN: cfg.DBDSN, Debug: cfg.Debug})
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}

// buildEngine 打开存储并组装 engine；返回的 cleanup 关闭连接
// 任何一步失败都会关闭已经打开的连接。
func buildEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *jailbot.JailEngine, _ func(), err error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	db, closeDB, err := openStorage(cfg)
	if err != nil {
		return nil, nil, err
	}
	var rdb *redis.Client
	cleanup := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		closeDB()
	}
	defer func() {
		if err != nil {
			cleanup()
		}
	}()

	rdb, err = jailbot.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	if rdb == nil {
		logger.Info("redis not configured, using in-process locks")
	}

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, nil, fmt.Errorf("create discord session: %w", err)
	}

	engine, err := jailbot.NewEngine(
		jailbot.WithDB(db),
		jailbot.WithRDB(rdb),
		jailbot.WithSession(session),
		jailbot.WithLogger(logger),
		jailbot.WithSweepInterval(cfg.SweepInterval),
		jailbot.WithAPIToken(cfg.APIToken),
		jailbot.WithGuildConfig(jailbot.GuildConfig{
			GuildID:             cfg.GuildID,
			SuspendedRoleID:     cfg.SuspendedRoleID,
			LogChannelID:        cfg.LogChannelID,
			StatusChannelID:     cfg.StatusChannelID,
			BackgroundChannelID: cfg.BackgroundChannelID,
			AllowedRoles:        cfg.AllowedRoles,
		}),
	)
	if err != nil {
		return nil, nil, err
	}
	return engine, cleanup, nil
}

func serveRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := commonRun(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := engine.Open(ctx); err != nil {
		return fmt.Errorf("open engine: %w", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Warn("close discord session", "error", err)
		}
	}()
	logger.Info("bot is running, press Ctrl-C to exit")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.RunSweeper(gctx)
	})

	if cfg.HTTPAddr != "" {
		if !cfg.Debug {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           engine.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logger.Info("http listening", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	logger.Info("shutting down")
	return err
}
