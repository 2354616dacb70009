package repository

import (
	"errors"

	"github.com/cydxin/jail-bot/models"
	"gorm.io/gorm"
)

// CriminalRecordDAO 前科记录（只追加；释放时补写一次出狱信息）
type CriminalRecordDAO struct {
	db *gorm.DB
}

func NewCriminalRecordDAO(db *gorm.DB) *CriminalRecordDAO {
	return &CriminalRecordDAO{db: db}
}

func (dao *CriminalRecordDAO) WithDB(db *gorm.DB) *CriminalRecordDAO {
	if db == nil {
		return dao
	}
	return &CriminalRecordDAO{db: db}
}

func (dao *CriminalRecordDAO) Create(r *models.CriminalRecord) error {
	return dao.db.Create(r).Error
}

// FindLatestOpen 最近一条尚未写出狱时间的记录；没有时返回 nil, nil
func (dao *CriminalRecordDAO) FindLatestOpen(userID, guildID string) (*models.CriminalRecord, error) {
	var r models.CriminalRecord
	err := dao.db.Where("user_id = ? AND guild_id = ? AND actual_end_time IS NULL", userID, guildID).
		Order("start_time DESC").
		Order("id DESC").
		Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Close 写入出狱时间与类型；已写过的记录不会被覆盖
func (dao *CriminalRecordDAO) Close(id uint64, actualEnd, releaseType string) (bool, error) {
	res := dao.db.Model(&models.CriminalRecord{}).
		Where("id = ? AND actual_end_time IS NULL", id).
		Updates(map[string]any{"actual_end_time": actualEnd, "release_type": releaseType})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListByUserGuild 某用户在某服务器的全部记录（排序交给 service，按解析后的时间）
func (dao *CriminalRecordDAO) ListByUserGuild(userID, guildID string) ([]models.CriminalRecord, error) {
	var list []models.CriminalRecord
	err := dao.db.Where("user_id = ? AND guild_id = ?", userID, guildID).
		Order("id DESC").
		Find(&list).Error
	return list, err
}

// ListAll migrate 时用
func (dao *CriminalRecordDAO) ListAll() ([]models.CriminalRecord, error) {
	var list []models.CriminalRecord
	err := dao.db.Order("id ASC").Find(&list).Error
	return list, err
}

// UpdateTimes 只改时间列（旧格式规范化）
func (dao *CriminalRecordDAO) UpdateTimes(id uint64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dao.db.Model(&models.CriminalRecord{}).Where("id = ?", id).Updates(updates).Error
}
