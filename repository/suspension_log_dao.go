package repository

import (
	"github.com/cydxin/jail-bot/models"
	"gorm.io/gorm"
)

// SuspensionLogDAO 审计日志，只有追加和查询
type SuspensionLogDAO struct {
	db *gorm.DB
}

func NewSuspensionLogDAO(db *gorm.DB) *SuspensionLogDAO {
	return &SuspensionLogDAO{db: db}
}

func (dao *SuspensionLogDAO) WithDB(db *gorm.DB) *SuspensionLogDAO {
	if db == nil {
		return dao
	}
	return &SuspensionLogDAO{db: db}
}

func (dao *SuspensionLogDAO) Append(l *models.SuspensionLog) error {
	return dao.db.Create(l).Error
}

// ListRecent 最近的日志；userID 为空时查全部
func (dao *SuspensionLogDAO) ListRecent(userID string, limit int) ([]models.SuspensionLog, error) {
	var list []models.SuspensionLog
	q := dao.db.Model(&models.SuspensionLog{})
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Order("id DESC").Find(&list).Error
	return list, err
}
