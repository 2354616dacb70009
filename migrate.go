package jail_bot

import (
	"context"
	"fmt"
	"log"

	"github.com/cydxin/jail-bot/models"
	"github.com/cydxin/jail-bot/service"
	"gorm.io/gorm"
)

// MigrateDB 建表并统一旧时间格式，不需要连接 Discord
func MigrateDB(ctx context.Context, db *gorm.DB) (int, error) {
	log.Println("AutoMigrate...")
	if err := db.WithContext(ctx).AutoMigrate(models.MigrateModels...); err != nil {
		return 0, fmt.Errorf("auto migrate: %w", err)
	}
	return migrateLegacyTimestamps(ctx, db, service.NewStoreService(&service.Service{DB: db}))
}

// MigrateLegacyTimestamps 把旧版本写入的时间（带时区偏移 / 不带微秒）统一成 models.TimeLayout
// 统一之后 end_time 才能直接按文本比较。可重复执行。
func (e *JailEngine) MigrateLegacyTimestamps(ctx context.Context) (int, error) {
	return migrateLegacyTimestamps(ctx, e.config.DB, e.Store)
}

func migrateLegacyTimestamps(ctx context.Context, db *gorm.DB, store *service.StoreService) (int, error) {
	for _, m := range []any{&models.Suspension{}, &models.CriminalRecord{}} {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return 0, fmt.Errorf("parse model: %w", err)
		}
		tableName := stmt.Schema.Table
		// 验证表名格式（只允许字母、数字和下划线）
		if !isValidTableName(tableName) {
			return 0, fmt.Errorf("invalid table name: %s", tableName)
		}
		if !db.Migrator().HasTable(tableName) {
			log.Printf("表 %s 不存在，跳过迁移", tableName)
			return 0, nil
		}
	}

	log.Println("开始统一时间格式...")
	n, err := store.NormalizeTimestamps(ctx)
	if err != nil {
		return 0, fmt.Errorf("统一时间格式失败: %w", err)
	}
	log.Printf("迁移完成！改写 %d 行", n)
	return n, nil
}

// isValidTableName 验证表名格式，防止 SQL 注入
func isValidTableName(name string) bool {
	// 只允许字母、数字和下划线
	for _, c := range name {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || c == '_') {
			return false
		}
	}
	return len(name) > 0 && len(name) < 64 // MySQL 表名最大 64 字符
}
