package repository

import (
	"errors"

	"github.com/cydxin/jail-bot/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SuspensionDAO 封装 suspensions 表的数据库操作
//
// 约定：
//   - 只做数据访问，不做业务编排（角色变更、通知等）。
//   - 事务边界由 service 控制；事务内请使用 WithDB(tx)。
type SuspensionDAO struct {
	db *gorm.DB
}

func NewSuspensionDAO(db *gorm.DB) *SuspensionDAO {
	return &SuspensionDAO{db: db}
}

// WithDB 用于在事务（tx）中复用 DAO
func (dao *SuspensionDAO) WithDB(db *gorm.DB) *SuspensionDAO {
	if db == nil {
		return dao
	}
	return &SuspensionDAO{db: db}
}

// Upsert 按 user_id 覆盖写入（后写覆盖先写）
func (dao *SuspensionDAO) Upsert(s *models.Suspension) error {
	return dao.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(s).Error
}

// FindActiveByUserID 查询生效中的关押；没有时返回 nil, nil
func (dao *SuspensionDAO) FindActiveByUserID(userID string) (*models.Suspension, error) {
	var s models.Suspension
	err := dao.db.Where("user_id = ? AND is_active = ?", userID, true).Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListActive 全部生效中的关押；guildID 为空时不按服务器过滤
func (dao *SuspensionDAO) ListActive(guildID string) ([]models.Suspension, error) {
	var list []models.Suspension
	q := dao.db.Model(&models.Suspension{}).Where("is_active = ?", true)
	if guildID != "" {
		q = q.Where("guild_id = ?", guildID)
	}
	err := q.Order("end_time ASC").Find(&list).Error
	return list, err
}

// Deactivate is_active 1 -> 0 的 CAS；返回是否由本次调用完成
func (dao *SuspensionDAO) Deactivate(userID string) (bool, error) {
	res := dao.db.Model(&models.Suspension{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListAll migrate 时用，按主键顺序
func (dao *SuspensionDAO) ListAll() ([]models.Suspension, error) {
	var list []models.Suspension
	err := dao.db.Order("user_id ASC").Find(&list).Error
	return list, err
}

// UpdateTimes 只改时间列（旧格式规范化）
func (dao *SuspensionDAO) UpdateTimes(userID, start, end string) error {
	return dao.db.Model(&models.Suspension{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"start_time": start, "end_time": end}).Error
}
