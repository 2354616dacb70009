package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cydxin/jail-bot/models"
)

// 审计原因（Discord audit log reason）
const (
	reasonSentenced = "Sentenced"
	reasonEnded     = "Sentence ended"
	reasonRestored  = "Roles restored after release"
)

// BeginRequest 关押请求
type BeginRequest struct {
	GuildID       string
	UserID        string
	IssuerID      string
	DurationLabel string // label 或短名（1h / 1 hour）
	Reason        string
}

// BeginResult 关押结果
type BeginResult struct {
	Suspension   *models.Suspension
	Member       *Member
	RemovedRoles []string
	EndsAt       time.Time
}

// EndRequest 释放请求；EndedBy 为 nil 表示自动到期
type EndRequest struct {
	GuildID string
	UserID  string
	EndedBy *string
	// SkipRefresh 批量释放时由调用方统一刷新状态消息
	SkipRefresh bool
}

// EndResult 释放结果
type EndResult struct {
	Suspension    *models.Suspension // 释放前的快照
	Member        *Member
	RestoredRoles []string
	Automatic     bool
	TimeServed    string // 仅自动释放
}

// StatusView jailstatus 展示数据
type StatusView struct {
	UserID        string
	GuildID       string
	DurationText  string
	SuspendedBy   string
	Reason        string
	Expired       bool // 已到期但 sweeper 还没处理
	Remaining     time.Duration
	RemainingText string
	ReleaseAt     time.Time
	ReleaseText   string
}

// BackgroundReport 前科查询
type BackgroundReport struct {
	UserID          string
	GuildID         string
	RecordCount     int
	TotalServed     time.Duration
	TotalServedText string
	Current         *StatusView // 没有生效关押时为 nil
	Recent          []models.CriminalRecord
}

const backgroundRecentLimit = 5

// LifecycleService 关押 / 释放流程编排（角色变更 + 持久化 + 通知）
type LifecycleService struct {
	*Service
	Store     *StoreService
	Lock      *LockService
	Publisher *StatusService // 可选
}

func NewLifecycleService(s *Service, store *StoreService, lock *LockService, publisher *StatusService) *LifecycleService {
	log.Println("NewLifecycleService")
	return &LifecycleService{Service: s, Store: store, Lock: lock, Publisher: publisher}
}

// Begin 关押
// 角色变更失败时什么都不落库；已经改掉的角色需要人工处理。
func (s *LifecycleService) Begin(ctx context.Context, req BeginRequest) (*BeginResult, error) {
	release, err := s.Lock.Acquire(ctx, subjectLockKey(req.UserID))
	if err != nil {
		return nil, err
	}
	defer release()

	cur, err := s.Store.GetActive(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("get active suspension: %w", err)
	}
	if cur != nil {
		return nil, ErrAlreadySuspended
	}

	roleIDs, err := s.guildRoleSet(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}
	if _, ok := roleIDs[s.Config.SuspendedRoleID]; !ok {
		return nil, ErrRoleNotFound
	}

	label, ok := CanonicalDurationLabel(req.DurationLabel)
	if !ok {
		return nil, ErrInvalidDuration
	}
	seconds, _ := ResolveDuration(label)

	member, err := s.Guild.Member(ctx, req.GuildID, req.UserID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, err
		}
		return nil, &PlatformError{Op: "get_member", Err: err}
	}

	prior := priorRoles(member.Roles, req.GuildID, s.Config.SuspendedRoleID, roleIDs)

	if len(prior) > 0 {
		if err := s.Guild.RemoveRoles(ctx, req.GuildID, req.UserID, prior, reasonSentenced); err != nil {
			return nil, &PlatformError{Op: "remove_roles", Err: err}
		}
	}
	if err := s.Guild.AddRoles(ctx, req.GuildID, req.UserID, []string{s.Config.SuspendedRoleID}, reasonSentenced); err != nil {
		return nil, &PlatformError{Op: "add_suspended_role", Err: err}
	}

	row, err := s.Store.Create(ctx, CreateSuspensionInput{
		UserID:          req.UserID,
		GuildID:         req.GuildID,
		SuspendedBy:     req.IssuerID,
		DurationSeconds: seconds,
		DurationText:    label,
		PreviousRoles:   prior,
		Reason:          req.Reason,
	})
	if err != nil {
		s.logger().Error("suspension persisted failed after role change",
			"guild_id", req.GuildID, "user_id", req.UserID, "error", err)
		return nil, fmt.Errorf("create suspension: %w", err)
	}
	s.Metrics.IncSuspension()

	endsAt, _ := row.End()
	s.notify(ctx, AuditEvent{
		Action:      models.ActionSuspended,
		GuildID:     req.GuildID,
		UserID:      req.UserID,
		PerformedBy: req.IssuerID,
		Duration:    label,
		Reason:      req.Reason,
		AvatarURL:   member.AvatarURL,
		At:          s.now(),
	})
	s.refresh(ctx, req.GuildID)

	return &BeginResult{Suspension: row, Member: member, RemovedRoles: prior, EndsAt: endsAt}, nil
}

// End 释放（手动或自动）
// 角色恢复失败时记录保持生效，下次重试。
func (s *LifecycleService) End(ctx context.Context, req EndRequest) (*EndResult, error) {
	release, err := s.Lock.Acquire(ctx, subjectLockKey(req.UserID))
	if err != nil {
		return nil, err
	}
	defer release()

	automatic := req.EndedBy == nil

	cur, err := s.Store.GetActive(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("get active suspension: %w", err)
	}
	if cur == nil {
		return nil, ErrNotSuspended
	}
	guildID := cur.GuildID

	roleIDs, err := s.guildRoleSet(ctx, guildID)
	if err != nil {
		return nil, err
	}
	_, suspendedRoleExists := roleIDs[s.Config.SuspendedRoleID]
	if !suspendedRoleExists && !automatic {
		return nil, ErrRoleNotFound
	}

	// 已删除的角色直接丢弃
	restore := make([]string, 0)
	for _, id := range cur.RoleIDs() {
		if _, ok := roleIDs[id]; ok {
			restore = append(restore, id)
		}
	}

	member, err := s.Guild.Member(ctx, guildID, req.UserID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, err
		}
		return nil, &PlatformError{Op: "get_member", Err: err}
	}

	if suspendedRoleExists && hasRole(member.Roles, s.Config.SuspendedRoleID) {
		if err := s.Guild.RemoveRoles(ctx, guildID, req.UserID, []string{s.Config.SuspendedRoleID}, reasonEnded); err != nil {
			return nil, &PlatformError{Op: "remove_suspended_role", Err: err}
		}
	}
	if len(restore) > 0 {
		if err := s.Guild.AddRoles(ctx, guildID, req.UserID, restore, reasonRestored); err != nil {
			return nil, &PlatformError{Op: "restore_roles", Err: err}
		}
	}

	snapshot, err := s.Store.End(ctx, req.UserID, req.EndedBy)
	if err != nil {
		return nil, fmt.Errorf("end suspension: %w", err)
	}
	if snapshot == nil {
		// 另一个释放流程抢先完成
		return nil, ErrNotSuspended
	}

	res := &EndResult{Suspension: snapshot, Member: member, RestoredRoles: restore, Automatic: automatic}
	ev := AuditEvent{
		Action:    models.ActionReleased,
		GuildID:   guildID,
		UserID:    req.UserID,
		Duration:  snapshot.DurationText,
		AvatarURL: member.AvatarURL,
		At:        s.now(),
	}
	if automatic {
		if start, err := snapshot.Start(); err == nil {
			res.TimeServed = FormatRemaining(s.now().Sub(start))
		}
		ev.Action = models.ActionExpired
		ev.PerformedBy = models.SystemActorID
		ev.TimeServed = res.TimeServed
		s.Metrics.IncRelease(models.ReleaseTimeServed)
	} else {
		ev.PerformedBy = *req.EndedBy
		s.Metrics.IncRelease(models.ReleaseManualRelease)
	}
	s.notify(ctx, ev)

	if !req.SkipRefresh {
		s.refresh(ctx, guildID)
	}
	return res, nil
}

// Status 查询当前关押状态
func (s *LifecycleService) Status(ctx context.Context, userID string) (*StatusView, error) {
	cur, err := s.Store.GetActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get active suspension: %w", err)
	}
	if cur == nil {
		return nil, ErrNotSuspended
	}
	return buildStatusView(cur, s.now()), nil
}

func buildStatusView(cur *models.Suspension, now time.Time) *StatusView {
	v := &StatusView{
		UserID:       cur.UserID,
		GuildID:      cur.GuildID,
		DurationText: cur.DurationText,
		SuspendedBy:  cur.SuspendedBy,
		Reason:       cur.Reason,
	}
	end, err := cur.End()
	if err != nil {
		v.RemainingText = "Unknown"
		v.ReleaseText = "Unknown"
		return v
	}
	v.ReleaseAt = end
	v.ReleaseText = DiscordTimestamp(end, "F")
	if !end.After(now) {
		v.Expired = true
		return v
	}
	v.Remaining = end.Sub(now)
	v.RemainingText = FormatRemaining(v.Remaining)
	return v
}

// Background 前科汇总
func (s *LifecycleService) Background(ctx context.Context, guildID, userID string) (*BackgroundReport, error) {
	records, err := s.Store.History(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	total := SumTimeServed(records)
	rep := &BackgroundReport{
		UserID:          userID,
		GuildID:         guildID,
		RecordCount:     len(records),
		TotalServed:     total,
		TotalServedText: FormatRemaining(total),
	}
	if total == 0 {
		rep.TotalServedText = "None"
	}

	view, err := s.Status(ctx, userID)
	switch {
	case err == nil:
		rep.Current = view
	case errors.Is(err, ErrNotSuspended):
	default:
		return nil, err
	}

	if len(records) > backgroundRecentLimit {
		records = records[:backgroundRecentLimit]
	}
	rep.Recent = records
	return rep, nil
}

func (s *LifecycleService) guildRoleSet(ctx context.Context, guildID string) (map[string]Role, error) {
	roles, err := s.Guild.Roles(ctx, guildID)
	if err != nil {
		return nil, &PlatformError{Op: "list_roles", Err: err}
	}
	set := make(map[string]Role, len(roles))
	for _, r := range roles {
		set[r.ID] = r
	}
	return set, nil
}

func (s *LifecycleService) refresh(ctx context.Context, guildID string) {
	if s.Publisher == nil || s.Config.StatusChannelID == "" {
		return
	}
	if err := s.Publisher.Refresh(ctx, guildID, s.Config.StatusChannelID); err != nil {
		s.logger().Warn("status refresh failed", "guild_id", guildID, "error", err)
	}
}

// priorRoles 成员当前角色去掉 @everyone（ID 与 guild 相同）、关押角色和托管角色，保持顺序
// 托管角色（Nitro booster、集成/机器人角色）API 无法增删，关押期间原样保留。
func priorRoles(memberRoles []string, guildID, suspendedRoleID string, guildRoles map[string]Role) []string {
	out := make([]string, 0, len(memberRoles))
	for _, id := range memberRoles {
		if id == guildID || id == suspendedRoleID {
			continue
		}
		if r, ok := guildRoles[id]; ok && r.Managed {
			continue
		}
		out = append(out, id)
	}
	return out
}

func hasRole(roles []string, id string) bool {
	for _, r := range roles {
		if r == id {
			return true
		}
	}
	return false
}
