package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cydxin/jail-bot/models"
	"github.com/google/uuid"
)

// SweepResult 一次扫描的结果
type SweepResult struct {
	RunID    string
	Skipped  bool // 其他实例持有扫描锁
	Expired  int  // 到期条数
	Released int  // 恢复角色并结束
	Departed int  // 成员已离开服务器，只结束记录
	Failed   int
	Guilds   []string // 刷新过状态消息的服务器
}

// ExpiryService 到期释放
type ExpiryService struct {
	*Service
	Store     *StoreService
	Lifecycle *LifecycleService
	Publisher *StatusService // 可选
	Lock      *LockService

	sweepLockTTL time.Duration
}

func NewExpiryService(s *Service, store *StoreService, lifecycle *LifecycleService, publisher *StatusService, lock *LockService) *ExpiryService {
	log.Println("NewExpiryService")
	return &ExpiryService{
		Service:      s,
		Store:        store,
		Lifecycle:    lifecycle,
		Publisher:    publisher,
		Lock:         lock,
		sweepLockTTL: 5 * time.Minute,
	}
}

// Sweep 执行一次扫描
// 单条失败只记日志和计数，不影响其他条目；有释放时每个服务器刷新一次状态消息。
func (s *ExpiryService) Sweep(ctx context.Context, now time.Time) (SweepResult, error) {
	res := SweepResult{RunID: uuid.NewString()}
	start := time.Now()
	defer s.Metrics.ObserveSweep(start)

	lg := s.logger().With("component", "sweeper", "run_id", res.RunID)

	release, err := s.Lock.AcquireTTL(ctx, SweepLockKey, s.sweepLockTTL)
	if errors.Is(err, ErrBusy) {
		res.Skipped = true
		lg.Debug("sweep lock held elsewhere, skip")
		return res, nil
	}
	if err != nil {
		return res, err
	}
	defer release()

	expired, err := s.Store.ListExpired(ctx, now)
	if err != nil {
		return res, fmt.Errorf("list expired: %w", err)
	}
	res.Expired = len(expired)

	touched := make(map[string]struct{})
	for _, row := range expired {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		released, departed, err := s.expireOne(ctx, row)
		switch {
		case err != nil:
			res.Failed++
			lg.Error("expire suspension failed", "guild_id", row.GuildID, "user_id", row.UserID, "error", err)
			continue
		case departed:
			res.Departed++
		case released:
			res.Released++
		default:
			continue
		}
		touched[row.GuildID] = struct{}{}
	}
	s.Metrics.AddSweepErrors(res.Failed)

	for guildID := range touched {
		res.Guilds = append(res.Guilds, guildID)
		if s.Publisher == nil || s.Config.StatusChannelID == "" {
			continue
		}
		if err := s.Publisher.Refresh(ctx, guildID, s.Config.StatusChannelID); err != nil {
			lg.Warn("status refresh after sweep failed", "guild_id", guildID, "error", err)
		}
	}

	if res.Expired > 0 {
		lg.Info("sweep done", "expired", res.Expired, "released", res.Released, "departed", res.Departed, "failed", res.Failed)
	}
	return res, nil
}

func (s *ExpiryService) expireOne(ctx context.Context, row models.Suspension) (released, departed bool, err error) {
	_, err = s.Guild.Member(ctx, row.GuildID, row.UserID)
	if errors.Is(err, ErrMemberNotFound) {
		// 人已不在服务器，直接结束记录
		snap, err := s.Store.End(ctx, row.UserID, nil)
		if err != nil {
			return false, false, err
		}
		if snap != nil {
			s.Metrics.IncRelease(models.ReleaseTimeServed)
		}
		return false, snap != nil, nil
	}
	if err != nil {
		return false, false, &PlatformError{Op: "get_member", Err: err}
	}

	_, err = s.Lifecycle.End(ctx, EndRequest{GuildID: row.GuildID, UserID: row.UserID, SkipRefresh: true})
	switch {
	case errors.Is(err, ErrNotSuspended):
		// 手动释放抢先完成
		return false, false, nil
	case err != nil:
		return false, false, err
	}
	return true, false, nil
}
