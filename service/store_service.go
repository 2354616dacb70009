package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/cydxin/jail-bot/models"
	"github.com/cydxin/jail-bot/repository"
	"gorm.io/gorm"
)

// CreateSuspensionInput 新建关押参数；开始/结束时间在 Create 内按当前时间计算
type CreateSuspensionInput struct {
	UserID          string
	GuildID         string
	SuspendedBy     string
	DurationSeconds int64
	DurationText    string
	PreviousRoles   []string
	Reason          string
}

// StoreService 关押数据的持久化（每个写操作一个事务）
type StoreService struct {
	*Service
	suspensions *repository.SuspensionDAO
	logs        *repository.SuspensionLogDAO
	records     *repository.CriminalRecordDAO
	sticky      *repository.StickyMessageDAO
}

func NewStoreService(s *Service) *StoreService {
	log.Println("NewStoreService")
	return &StoreService{
		Service:     s,
		suspensions: repository.NewSuspensionDAO(s.DB),
		logs:        repository.NewSuspensionLogDAO(s.DB),
		records:     repository.NewCriminalRecordDAO(s.DB),
		sticky:      repository.NewStickyMessageDAO(s.DB),
	}
}

// Create 覆盖写入关押行，追加 SUSPENDED 日志和一条前科记录
func (s *StoreService) Create(ctx context.Context, in CreateSuspensionInput) (*models.Suspension, error) {
	if in.UserID == "" || in.GuildID == "" {
		return nil, fmt.Errorf("create suspension: user_id and guild_id required")
	}
	if in.DurationSeconds <= 0 {
		return nil, ErrInvalidDuration
	}

	now := s.now()
	start := models.FormatTime(now)
	end := models.FormatTime(now.Add(time.Duration(in.DurationSeconds) * time.Second))
	roles := models.EncodeRoleIDs(in.PreviousRoles)

	row := &models.Suspension{
		UserID:        in.UserID,
		GuildID:       in.GuildID,
		SuspendedBy:   in.SuspendedBy,
		StartTime:     start,
		EndTime:       end,
		DurationText:  in.DurationText,
		PreviousRoles: roles,
		IsActive:      true,
		Reason:        in.Reason,
	}

	err := s.dbCtx(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.suspensions.WithDB(tx).Upsert(row); err != nil {
			return fmt.Errorf("upsert suspension: %w", err)
		}
		if err := s.logs.WithDB(tx).Append(&models.SuspensionLog{
			UserID:      in.UserID,
			GuildID:     in.GuildID,
			Action:      models.ActionSuspended,
			PerformedBy: in.SuspendedBy,
			Timestamp:   start,
			Details:     suspendDetails(in.DurationText, in.Reason),
		}); err != nil {
			return fmt.Errorf("append log: %w", err)
		}
		if err := s.records.WithDB(tx).Create(&models.CriminalRecord{
			UserID:        in.UserID,
			GuildID:       in.GuildID,
			SuspendedBy:   in.SuspendedBy,
			StartTime:     start,
			EndTime:       end,
			DurationText:  in.DurationText,
			PreviousRoles: roles,
			Reason:        in.Reason,
		}); err != nil {
			return fmt.Errorf("create criminal record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func suspendDetails(label, reason string) string {
	d := "Duration: " + label
	if reason != "" {
		d += "; Reason: " + reason
	}
	return d
}

// GetActive 没有生效中的关押时返回 nil, nil
func (s *StoreService) GetActive(ctx context.Context, userID string) (*models.Suspension, error) {
	return s.suspensions.WithDB(s.dbCtx(ctx)).FindActiveByUserID(userID)
}

// ListActive 生效中且未到期的关押；guildID 为空时不过滤
func (s *StoreService) ListActive(ctx context.Context, guildID string, now time.Time) ([]models.Suspension, error) {
	rows, err := s.suspensions.WithDB(s.dbCtx(ctx)).ListActive(guildID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Suspension, 0, len(rows))
	for _, r := range rows {
		end, err := r.End()
		if err != nil || !end.After(now) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// ListExpired 生效中且 end_time <= now 的关押
// end_time 无法解析的行也算到期，交给 sweeper 释放。
func (s *StoreService) ListExpired(ctx context.Context, now time.Time) ([]models.Suspension, error) {
	rows, err := s.suspensions.WithDB(s.dbCtx(ctx)).ListActive("")
	if err != nil {
		return nil, err
	}
	out := make([]models.Suspension, 0)
	for _, r := range rows {
		end, err := r.End()
		if err != nil {
			s.logger().Warn("unparsable end_time, treating as expired",
				"user_id", r.UserID, "guild_id", r.GuildID, "end_time", r.EndTime)
			out = append(out, r)
			continue
		}
		if !end.After(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

// End 结束关押（is_active CAS）
// endedBy 为 nil 表示自动到期。并发时只有一个调用者拿到快照，其余返回 nil, nil。
func (s *StoreService) End(ctx context.Context, userID string, endedBy *string) (*models.Suspension, error) {
	var snapshot *models.Suspension
	now := models.FormatTime(s.now())

	err := s.dbCtx(ctx).Transaction(func(tx *gorm.DB) error {
		dao := s.suspensions.WithDB(tx)
		cur, err := dao.FindActiveByUserID(userID)
		if err != nil {
			return err
		}
		if cur == nil {
			return nil
		}
		ok, err := dao.Deactivate(userID)
		if err != nil {
			return fmt.Errorf("deactivate suspension: %w", err)
		}
		if !ok {
			return nil
		}

		action, performedBy, releaseType := models.ActionExpired, models.SystemActorID, models.ReleaseTimeServed
		if endedBy != nil {
			action, performedBy, releaseType = models.ActionReleased, *endedBy, models.ReleaseManualRelease
		}

		if err := s.logs.WithDB(tx).Append(&models.SuspensionLog{
			UserID:      userID,
			GuildID:     cur.GuildID,
			Action:      action,
			PerformedBy: performedBy,
			Timestamp:   now,
			Details:     "Duration: " + cur.DurationText,
		}); err != nil {
			return fmt.Errorf("append log: %w", err)
		}

		records := s.records.WithDB(tx)
		open, err := records.FindLatestOpen(userID, cur.GuildID)
		if err != nil {
			return err
		}
		if open != nil {
			if _, err := records.Close(open.ID, now, releaseType); err != nil {
				return fmt.Errorf("close criminal record: %w", err)
			}
		}

		snapshot = cur // 修改前的快照
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// History 前科记录，开始时间倒序；时间无法解析的排最后
func (s *StoreService) History(ctx context.Context, userID, guildID string) ([]models.CriminalRecord, error) {
	list, err := s.records.WithDB(s.dbCtx(ctx)).ListByUserGuild(userID, guildID)
	if err != nil {
		return nil, err
	}
	sortRecordsNewestFirst(list)
	return list, nil
}

func sortRecordsNewestFirst(list []models.CriminalRecord) {
	sort.SliceStable(list, func(i, j int) bool {
		ti, ei := models.ParseTime(list[i].StartTime)
		tj, ej := models.ParseTime(list[j].StartTime)
		switch {
		case ei != nil && ej != nil:
			return list[i].ID > list[j].ID
		case ei != nil:
			return false
		case ej != nil:
			return true
		case ti.Equal(tj):
			return list[i].ID > list[j].ID
		default:
			return ti.After(tj)
		}
	})
}

// TotalTimeServed 累计服刑时长
func (s *StoreService) TotalTimeServed(ctx context.Context, userID, guildID string) (time.Duration, error) {
	list, err := s.records.WithDB(s.dbCtx(ctx)).ListByUserGuild(userID, guildID)
	if err != nil {
		return 0, err
	}
	return SumTimeServed(list), nil
}

// SumTimeServed Σ(实际出狱或计划结束 - 开始)，单条小于 0 按 0 计，时间无法解析的跳过
func SumTimeServed(records []models.CriminalRecord) time.Duration {
	var total time.Duration
	for _, r := range records {
		start, err := models.ParseTime(r.StartTime)
		if err != nil {
			continue
		}
		endText := r.EndTime
		if r.Released() {
			endText = *r.ActualEndTime
		}
		end, err := models.ParseTime(endText)
		if err != nil {
			continue
		}
		if d := end.Sub(start); d > 0 {
			total += d
		}
	}
	return total
}

// GetSticky 没有时返回 nil, nil
func (s *StoreService) GetSticky(ctx context.Context, channelID string) (*models.StickyMessage, error) {
	return s.sticky.WithDB(s.dbCtx(ctx)).FindByChannel(channelID)
}

func (s *StoreService) SetSticky(ctx context.Context, channelID, guildID, messageID string) error {
	return s.sticky.WithDB(s.dbCtx(ctx)).Upsert(&models.StickyMessage{
		ChannelID:   channelID,
		GuildID:     guildID,
		MessageID:   messageID,
		LastUpdated: models.FormatTime(s.now()),
	})
}

// AuditLog 最近的审计日志（userID 为空查全部）
func (s *StoreService) AuditLog(ctx context.Context, userID string, limit int) ([]models.SuspensionLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.logs.WithDB(s.dbCtx(ctx)).ListRecent(userID, limit)
}

// NormalizeTimestamps 把旧格式时间改写成统一格式，返回改动行数
func (s *StoreService) NormalizeTimestamps(ctx context.Context) (int, error) {
	changed := 0
	err := s.dbCtx(ctx).Transaction(func(tx *gorm.DB) error {
		susp := s.suspensions.WithDB(tx)
		rows, err := susp.ListAll()
		if err != nil {
			return err
		}
		for _, r := range rows {
			start, c1 := models.NormalizeTime(r.StartTime)
			end, c2 := models.NormalizeTime(r.EndTime)
			if !c1 && !c2 {
				continue
			}
			if err := susp.UpdateTimes(r.UserID, start, end); err != nil {
				return err
			}
			changed++
		}

		records := s.records.WithDB(tx)
		list, err := records.ListAll()
		if err != nil {
			return err
		}
		for _, r := range list {
			updates := map[string]any{}
			if v, ok := models.NormalizeTime(r.StartTime); ok {
				updates["start_time"] = v
			}
			if v, ok := models.NormalizeTime(r.EndTime); ok {
				updates["end_time"] = v
			}
			if r.ActualEndTime != nil {
				if v, ok := models.NormalizeTime(*r.ActualEndTime); ok {
					updates["actual_end_time"] = v
				}
			}
			if len(updates) == 0 {
				continue
			}
			if err := records.UpdateTimes(r.ID, updates); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	return changed, err
}
