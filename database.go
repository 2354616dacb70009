package jail_bot

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	sqliteFileName = "jailbot.db"
)

// DBOptions 数据库连接参数
type DBOptions struct {
	Driver string
	// DSN sqlite 时为文件路径（可带 _pragma 参数），为空用 <data dir>/jailbot.db
	DSN     string
	DataDir string
	Debug   bool
}

// SQLiteDSN 给文件路径补上 busy_timeout / WAL
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}

// OpenDB 按 driver 打开 gorm 连接
func OpenDB(opt DBOptions) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: gormlogger.Discard}
	if opt.Debug {
		cfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	switch opt.Driver {
	case DriverMySQL:
		if opt.DSN == "" {
			return nil, fmt.Errorf("mysql dsn is empty")
		}
		db, err := gorm.Open(mysql.Open(opt.DSN), cfg)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		return db, nil
	case DriverSQLite, "":
		dsn := opt.DSN
		if dsn == "" {
			dsn = filepath.Join(defaultDataDir(opt.DataDir), sqliteFileName)
		}
		db, err := gorm.Open(sqlite.Open(SQLiteDSN(dsn)), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// sqlite 单写者
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", opt.Driver)
	}
}

// OpenRedis addr 为空返回 nil（锁退化为进程内）
func OpenRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}
