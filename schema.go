package jail_bot

import (
	"fmt"

	"github.com/cydxin/jail-bot/models"
	"gorm.io/gorm"
)

// ColumnInfo GORM 解析出的字段
type ColumnInfo struct {
	GoName     string
	DBName     string
	SQLType    string // 当前方言下 CREATE TABLE 用的类型
	PrimaryKey bool
	Tag        string
}

// TableInfo 一张表
type TableInfo struct {
	Table   string
	Columns []ColumnInfo
}

// DescribeSchema 按 db 的方言解析全部表结构，排查 schema 不一致时用
func DescribeSchema(db *gorm.DB) ([]TableInfo, error) {
	out := make([]TableInfo, 0, len(models.MigrateModels))
	for _, m := range models.MigrateModels {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, fmt.Errorf("parse %T: %w", m, err)
		}
		t := TableInfo{Table: stmt.Schema.Table}
		for _, f := range stmt.Schema.Fields {
			if f.DBName == "" {
				continue
			}
			t.Columns = append(t.Columns, ColumnInfo{
				GoName:     f.Name,
				DBName:     f.DBName,
				SQLType:    db.Dialector.DataTypeOf(f),
				PrimaryKey: f.PrimaryKey,
				Tag:        f.Tag.Get("gorm"),
			})
		}
		out = append(out, t)
	}
	return out, nil
}
