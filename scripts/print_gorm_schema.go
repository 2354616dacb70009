package main

import (
	"fmt"
	"log"
	"os"

	jailbot "github.com/cydxin/jail-bot"
	"gorm.io/gorm"
)

// Usage:
//
//	set JAILBOT_DB_DRIVER=mysql
//	set JAILBOT_DSN=user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=true&loc=Local
//	go run .\scripts\print_gorm_schema.go
//
// 不设置时用临时目录下的 sqlite。
func main() {
	driver := os.Getenv("JAILBOT_DB_DRIVER")
	db, err := jailbot.OpenDB(jailbot.DBOptions{
		Driver:  driver,
		DSN:     os.Getenv("JAILBOT_DSN"),
		DataDir: os.TempDir(),
	})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	tables, err := jailbot.DescribeSchema(db)
	if err != nil {
		log.Fatalf("describe schema: %v", err)
	}

	// GORM field metadata + dialect SQL type
	for _, t := range tables {
		fmt.Printf("=== %s ===\n", t.Table)
		for _, c := range t.Columns {
			pk := ""
			if c.PrimaryKey {
				pk = "PK"
			}
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n", c.GoName, c.DBName, c.SQLType, pk, c.Tag)
		}
	}

	// Now print actual DB schema (works on MySQL)
	if driver != jailbot.DriverMySQL {
		return
	}
	for _, t := range tables {
		printColumns(db, t.Table)
	}
}

func printColumns(db *gorm.DB, table string) {
	type col struct {
		Field string
		Type  string
		Null  string
		Key   string
	}
	var cols []col
	if err := db.Raw("SHOW COLUMNS FROM " + table).Scan(&cols).Error; err != nil {
		fmt.Printf("SHOW COLUMNS FROM %s failed: %v\n", table, err)
		return
	}
	fmt.Printf("=== SHOW COLUMNS FROM %s ===\n", table)
	for _, c := range cols {
		fmt.Printf("%s\t%s\t%s\t%s\n", c.Field, c.Type, c.Null, c.Key)
	}
}
