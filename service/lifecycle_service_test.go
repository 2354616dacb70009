package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cydxin/jail-bot/models"
)

func TestLifecycle_BeginAndStatus(t *testing.T) {
	f := newFixture(t)
	f.guild.addMember("7", "100", "200")

	res := f.jail(t, "7", "1 hour")
	if len(res.RemovedRoles) != 2 || res.RemovedRoles[0] != "100" || res.RemovedRoles[1] != "200" {
		t.Fatalf("prior roles = %v", res.RemovedRoles)
	}

	roles := f.guild.rolesOf("7")
	if hasRole(roles, "100") || hasRole(roles, "200") || !hasRole(roles, testSuspendedRole) || !hasRole(roles, testGuild) {
		t.Fatalf("roles after jail = %v", roles)
	}

	f.now = f.now.Add(time.Second)
	view, err := f.lifecycle.Status(context.Background(), "7")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if view.DurationText != "1 hour" {
		t.Fatalf("label not verbatim: %q", view.DurationText)
	}
	if view.Expired || view.Remaining <= 0 || view.Remaining > time.Hour {
		t.Fatalf("remaining = %v expired=%v", view.Remaining, view.Expired)
	}
	if view.RemainingText != "59 minutes" {
		t.Fatalf("remaining text = %q", view.RemainingText)
	}

	if len(f.events) != 1 || f.events[0].Action != models.ActionSuspended || f.events[0].PerformedBy != testIssuer {
		t.Fatalf("audit events = %#v", f.events)
	}
	if f.channel.sentCount() != 1 {
		t.Fatalf("expected a status refresh after jail")
	}
}

func TestLifecycle_BeginShortNameStoresLabel(t *testing.T) {
	f := newFixture(t)
	f.guild.addMember("7")

	f.jail(t, "7", "12h")
	got, _ := f.store.GetActive(context.Background(), "7")
	if got.DurationText != "12 hours" {
		t.Fatalf("duration_text = %q", got.DurationText)
	}
}

func TestLifecycle_BeginTwice(t *testing.T) {
	f := newFixture(t)
	f.guild.addMember("7", "100")
	f.jail(t, "7", "1 hour")
	before, _ := f.store.GetActive(context.Background(), "7")

	_, err := f.lifecycle.Begin(context.Background(), BeginRequest{GuildID: testGuild, UserID: "7", IssuerID: testIssuer, DurationLabel: "7 days"})
	if !errors.Is(err, ErrAlreadySuspended) {
		t.Fatalf("expected ErrAlreadySuspended, got %v", err)
	}

	after, _ := f.store.GetActive(context.Background(), "7")
	if after.EndTime != before.EndTime || after.DurationText != "1 hour" {
		t.Fatalf("store changed: %#v", after)
	}
	if n := f.count(t, &models.CriminalRecord{}, "user_id = ?", "7"); n != 1 {
		t.Fatalf("criminal records = %d", n)
	}
	if n := f.count(t, &models.SuspensionLog{}, "user_id = ?", "7"); n != 1 {
		t.Fatalf("audit entries = %d", n)
	}
}

func TestLifecycle_BeginValidation(t *testing.T) {
	f := newFixture(t)
	f.guild.addMember("7", "100")
	ctx := context.Background()

	_, err := f.lifecycle.Begin(ctx, BeginRequest{GuildID: testGuild, UserID: "7", IssuerID: testIssuer, DurationLabel: "5 minutes"})
	if !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}

	_, err = f.lifecycle.Begin(ctx, BeginRequest{GuildID: testGuild, UserID: "404", IssuerID: testIssuer, DurationLabel: "1 hour"})
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}

	f.guild.dropRole(testSuspendedRole)
	_, err = f.lifecycle.Begin(ctx, BeginRequest{GuildID: testGuild, UserID: "7", IssuerID: testIssuer, DurationLabel: "1 hour"})
	if !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}

	if n := f.count(t, &models.Suspension{}, "1 = 1"); n != 0 {
		t.Fatalf("nothing should be persisted, got %d rows", n)
	}
}

func TestLifecycle_BeginForbiddenPersistsNothing(t *testing.T) {
	f := newFixture(t)
	f.guild.addMember("7", "100")
	f.guild.removeErr = fmt.Errorf("HTTP 403 Forbidden: %w", ErrForbidden)

	_, err := f.lifecycle.Begin(context.Background(), BeginRequest{GuildID: testGuild, UserID: "7", IssuerID: testIssuer, DurationLabel: "1 hour"})
	var pe *PlatformError
	if !errors.As(err, &pe) || !IsForbidden(err) {
		t.Fatalf("expected forbidden PlatformError, got %v", err)
	}
	if pe.Op != "remove_roles" {
		t.Fatalf("op = %s", pe.Op)
	}
	if n := f.count(t, &models.Suspension{}, "1 = 1"); n != 0 {
		t.Fatalf("nothing should be persisted")
	}
	if n := f.count(t, &models.SuspensionLog{}, "1 = 1"); n != 0 {
		t.Fatalf("no audit entry expected")
	}
}

func TestLifecycle_BeginAddSuspendedRoleFails(t *testing.T) {
	f := newFixture(t)
	f.guild.addMember("7", "100")
	f.guild.addErr = errors.New("HTTP 500 Internal Server Error")

	_, err := f.lifecycle.Begin(context.Background(), BeginRequest{GuildID: testGuild, UserID: "7", IssuerID: testIssuer, DurationLabel: "1 hour"})
	var pe *PlatformError
	if !errors.As(err, &pe) || pe.Op != "add_suspended_role" {
		t.Fatalf("expected add_suspended_role PlatformError, got %v", err)
	}
	// 角色 100 已被删掉，需要人工恢复
	if hasRole(f.guild.rolesOf("7"), "100") {
		t.Fatalf("remove step should have run first")
	}
	if n := f.count(t, &models.Suspension{}, "1 = 1"); n != 0 {
		t.Fatalf("no suspension expected, got %d", n)
	}
	if n := f.count(t, &models.CriminalRecord{}, "1 = 1"); n != 0 {
		t.Fatalf("no criminal record expected, got %d", n)
	}
	if n := f.count(t, &models.SuspensionLog{}, "1 = 1"); n != 0 {
		t.Fatalf("no audit entry expected, got %d", n)
	}
	if len(f.events) != 0 {
		t.Fatalf("no notification expected")
	}
}

func TestLifecycle_ManagedRolesUntouched(t *testing.T) {
	f := newFixture(t)
	f.guild.addMember("7", "100", "400", "200")

	res := f.jail(t, "7", "1 hour")
	if fmt.Sprint(res.RemovedRoles) != "[100 200]" {
		t.Fatalf("prior roles = %v", res.RemovedRoles)
	}
	roles := f.guild.rolesOf("7")
	if !hasRole(roles, "400") || !hasRole(roles, testSuspendedRole) || hasRole(roles, "100") {
		t.Fatalf("roles after jail = %v", roles)
	}
	cur, _ := f.store.GetActive(context.Background(), "7")
	if hasRole(cur.RoleIDs(), "400") {
		t.Fatalf("managed role captured: %v", cur.RoleIDs())
	}

	if _, err := f.lifecycle.End(context.Background(), EndRequest{GuildID: testGuild, UserID: "7", EndedBy: strPtr(testIssuer)}); err != nil {
		t.Fatalf("End: %v", err)
	}
	roles = f.guild.rolesOf("7")
	if !hasRole(roles, "400") || !hasRole(roles, "100") || !hasRole(roles, "200") || hasRole(roles, testSuspendedRole) {
		t.Fatalf("roles after release = %v", roles)
	}
}

func TestLifecycle_EndManual(t *testing.T) {
	f := newFixture(t)
	f.guild.addMember("7", "100", "200", "300")
	f.jail(t, "7", "1 day")

	// 关押期间角色 200 被删除
	f.guild.dropRole("200")

	res, err := f.lifecycle.End(context.Background(), EndRequest{GuildID: testGuild, UserID: "7", EndedBy: strPtr(testIssuer)})
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if res.Automatic || len(res.RestoredRoles) != 2 || res.RestoredRoles[0] != "100" || res.RestoredRoles[1] != "300" {
		t.Fatalf("unexpected result %#v", res)
	}
	roles := f.guild.rolesOf("7")
	if hasRole(roles, testSuspendedRole) || !hasRole(roles, "100") || !hasRole(roles, "300") {
		t.Fatalf("roles after release = %v", roles)
	}

	var rec models.CriminalRecord
	if err := f.db.Where("user_id = ?", "7").Take(&rec).Error; err != nil {
		t.Fatalf("record: %v", err)
	}
	if rec.ReleaseType == nil || *rec.ReleaseType != models.ReleaseManualRelease {
		t.Fatalf("release type = %v", rec.ReleaseType)
	}

	last := f.events[len(f.events)-1]
	if last.Action != models.ActionReleased || last.PerformedBy != testIssuer {
		t.Fatalf("audit event = %#v", last)
	}
}

func TestLifecycle_EndNotSuspended(t *testing.T) {
	f := newFixture(t)
	f.guild.addMember("7", "100")

	_, err := f.lifecycle.End(context.Background(), EndRequest{GuildID: testGuild, UserID: "7", EndedBy: strPtr(testIssuer)})
	if !errors.Is(err, ErrNotSuspended) {
		t.Fatalf("expected ErrNotSuspended, got %v", err)
	}
	if n := f.count(t, &models.SuspensionLog{}, "1 = 1"); n != 0 {
		t.Fatalf("no audit entry expected, got %d", n)
	}
	if len(f.events) != 0 {
		t.Fatalf("no notification expected")
	}
}

func TestLifecycle_EndRestoreFailureKeepsActive(t *testing.T) {
	f := newFixture(t)
	f.guild.addMember("7", "100")
	f.jail(t, "7", "1 hour")
	f.guild.addErr = fmt.Errorf("boom: %w", ErrForbidden)

	_, err := f.lifecycle.End(context.Background(), EndRequest{GuildID: testGuild, UserID: "7", EndedBy: strPtr(testIssuer)})
	var pe *PlatformError
	if !errors.As(err, &pe) || pe.Op != "restore_roles" {
		t.Fatalf("expected restore_roles PlatformError, got %v", err)
	}
	cur, _ := f.store.GetActive(context.Background(), "7")
	if cur == nil {
		t.Fatalf("record should stay active for retry")
	}
}

func TestLifecycle_EndManualMissingRole(t *testing.T) {
	f := newFixture(t)
	f.guild.addMember("7", "100")
	f.jail(t, "7", "1 hour")
	f.guild.dropRole(testSuspendedRole)

	_, err := f.lifecycle.End(context.Background(), EndRequest{GuildID: testGuild, UserID: "7", EndedBy: strPtr(testIssuer)})
	if !errors.Is(err, ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}

	// 自动释放跳过关押角色，照常恢复
	res, err := f.lifecycle.End(context.Background(), EndRequest{GuildID: testGuild, UserID: "7"})
	if err != nil || !res.Automatic {
		t.Fatalf("automatic End: %#v %v", res, err)
	}
}

func TestLifecycle_StatusExpiredPending(t *testing.T) {
	f := newFixture(t)
	f.guild.addMember("7")
	f.jail(t, "7", "1 hour")
	f.now = f.now.Add(2 * time.Hour)

	view, err := f.lifecycle.Status(context.Background(), "7")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !view.Expired {
		t.Fatalf("expected expired-pending view")
	}

	if _, err := f.lifecycle.Status(context.Background(), "8"); !errors.Is(err, ErrNotSuspended) {
		t.Fatalf("expected ErrNotSuspended, got %v", err)
	}
}

func TestLifecycle_Background(t *testing.T) {
	f := newFixture(t)
	f.guild.addMember("7", "100")
	ctx := context.Background()

	f.jail(t, "7", "1 hour")
	f.now = f.now.Add(time.Hour)
	if _, err := f.lifecycle.End(ctx, EndRequest{GuildID: testGuild, UserID: "7"}); err != nil {
		t.Fatalf("End: %v", err)
	}
	f.now = f.now.Add(time.Hour)
	f.jail(t, "7", "1 day")

	rep, err := f.lifecycle.Background(ctx, testGuild, "7")
	if err != nil {
		t.Fatalf("Background: %v", err)
	}
	if rep.RecordCount != 2 || rep.Current == nil || rep.Current.DurationText != "1 day" {
		t.Fatalf("unexpected report %#v", rep)
	}
	// 已结束 1h + 进行中记录按计划结束时间 24h
	if rep.TotalServed != 25*time.Hour {
		t.Fatalf("total served = %v", rep.TotalServed)
	}

	clean, err := f.lifecycle.Background(ctx, testGuild, "8")
	if err != nil || clean.RecordCount != 0 || clean.Current != nil || clean.TotalServedText != "None" {
		t.Fatalf("clean report = %#v %v", clean, err)
	}
}

func TestLifecycle_BusySubject(t *testing.T) {
	f := newFixture(t)
	f.guild.addMember("7")

	release, err := f.lock.Acquire(context.Background(), subjectLockKey("7"))
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer release()

	_, err = f.lifecycle.Begin(context.Background(), BeginRequest{GuildID: testGuild, UserID: "7", IssuerID: testIssuer, DurationLabel: "1 hour"})
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestPriorRoles(t *testing.T) {
	guildRoles := map[string]Role{"4": {ID: "4", Managed: true}, "1": {ID: "1"}}
	got := priorRoles([]string{testGuild, "3", testSuspendedRole, "1", "4", "2"}, testGuild, testSuspendedRole, guildRoles)
	if fmt.Sprint(got) != "[3 1 2]" {
		t.Fatalf("priorRoles = %v", got)
	}
}
