package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/bwmarrin/discordgo"
	jailbot "github.com/cydxin/jail-bot"
	"github.com/gin-gonic/gin"
)

// 把 jail bot 嵌进已有进程的最小示例；独立部署用 cmd/jailbot。
func main() {
	// 1. 初始化数据库连接（sqlite 文件默认放在可执行文件目录的 data/ 下）
	db, err := jailbot.OpenDB(jailbot.DBOptions{Driver: jailbot.DriverSQLite})
	if err != nil {
		log.Fatal("数据库连接失败:", err)
	}

	// 2. Discord session，token 从环境变量读
	session, err := discordgo.New("Bot " + os.Getenv("DISCORD_TOKEN"))
	if err != nil {
		log.Fatal("创建 session 失败:", err)
	}

	// 3. 初始化 Engine
	// 注意：不配置 Redis 时锁只在本进程内生效，多实例部署需要 WithRDB
	engine, err := jailbot.NewEngine(
		jailbot.WithDB(db),
		//jailbot.WithRDB(rdb), // 配置 Redis
		jailbot.WithSession(session),
		jailbot.WithLogger(slog.New(slog.NewTextHandler(os.Stdout, nil))),
		jailbot.WithSweepInterval(30*time.Second),
		jailbot.WithGuildConfig(jailbot.GuildConfig{
			GuildID:         os.Getenv("GUILD_ID"),
			SuspendedRoleID: os.Getenv("SUSPENDED_ROLE_ID"),
			LogChannelID:    os.Getenv("LOG_CHANNEL_ID"),
			StatusChannelID: os.Getenv("STATUS_CHANNEL_ID"),
			AllowedRoles:    []string{os.Getenv("MOD_ROLE_ID")},
		}),
	)
	if err != nil {
		log.Fatal("初始化失败:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// 4. 连接 gateway，启动到期扫描
	if err := engine.Open(ctx); err != nil {
		log.Fatal("连接 Discord 失败:", err)
	}
	defer engine.Close()
	go func() {
		_ = engine.RunSweeper(ctx)
	}()

	// 5. HTTP：healthz / metrics / 记录查询
	// 设置 CORS（如果需要）
	r := engine.Router(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	go func() {
		if err := r.Run(":8080"); err != nil {
			log.Printf("http stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("bye")
}
