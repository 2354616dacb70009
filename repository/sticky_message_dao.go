package repository

import (
	"errors"

	"github.com/cydxin/jail-bot/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StickyMessageDAO 频道置底消息引用
type StickyMessageDAO struct {
	db *gorm.DB
}

func NewStickyMessageDAO(db *gorm.DB) *StickyMessageDAO {
	return &StickyMessageDAO{db: db}
}

func (dao *StickyMessageDAO) WithDB(db *gorm.DB) *StickyMessageDAO {
	if db == nil {
		return dao
	}
	return &StickyMessageDAO{db: db}
}

// FindByChannel 没有记录时返回 nil, nil
func (dao *StickyMessageDAO) FindByChannel(channelID string) (*models.StickyMessage, error) {
	var m models.StickyMessage
	err := dao.db.Where("channel_id = ?", channelID).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Upsert 按 channel_id 覆盖
func (dao *StickyMessageDAO) Upsert(m *models.StickyMessage) error {
	return dao.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"guild_id", "message_id", "last_updated"}),
	}).Create(m).Error
}
