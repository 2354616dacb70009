package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cydxin/jail-bot/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newMockDB 用 go-sqlmock 创建一个可被 GORM 使用的 *gorm.DB。
// mysql dialector 只是为了让 SQL/占位符风格稳定，不会连接真实 MySQL。
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	sqldb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqldb, SkipInitializeWithVersion: true}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		_ = sqldb.Close()
		t.Fatalf("gorm.Open: %v", err)
	}
	return db, mock, sqldb
}

// newSQLiteDB 每个测试独立的内存库
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.MigrateModels...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

const (
	testGuild         = "1000"
	testSuspendedRole = "9000"
	testStatusChannel = "5000"
	testIssuer        = "42"
)

// fakeGuild 内存版 GuildGateway
type fakeGuild struct {
	mu      sync.Mutex
	roles   []Role
	members map[string]*Member

	memberErr error // 非 nil 时 Member 直接返回
	removeErr error
	addErr    error
	failUsers map[string]error // 针对个别用户的 Member 错误
}

func newFakeGuild() *fakeGuild {
	return &fakeGuild{
		roles: []Role{
			{ID: testGuild, Name: "@everyone"},
			{ID: testSuspendedRole, Name: "Jailed"},
			{ID: "100", Name: "Member"},
			{ID: "200", Name: "Artist"},
			{ID: "300", Name: "Helper"},
			{ID: "400", Name: "Server Booster", Managed: true},
		},
		members:   make(map[string]*Member),
		failUsers: make(map[string]error),
	}
}

func (g *fakeGuild) addMember(userID string, roles ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members[userID] = &Member{UserID: userID, Username: "user" + userID, Roles: append([]string{testGuild}, roles...)}
}

func (g *fakeGuild) rolesOf(userID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.members[userID]
	if !ok {
		return nil
	}
	return append([]string(nil), m.Roles...)
}

func (g *fakeGuild) dropRole(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := g.roles[:0]
	for _, r := range g.roles {
		if r.ID != id {
			out = append(out, r)
		}
	}
	g.roles = out
}

func (g *fakeGuild) Member(_ context.Context, _, userID string) (*Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.memberErr != nil {
		return nil, g.memberErr
	}
	if err := g.failUsers[userID]; err != nil {
		return nil, err
	}
	m, ok := g.members[userID]
	if !ok {
		return nil, ErrMemberNotFound
	}
	cp := *m
	cp.Roles = append([]string(nil), m.Roles...)
	return &cp, nil
}

func (g *fakeGuild) Roles(context.Context, string) ([]Role, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Role(nil), g.roles...), nil
}

// managedIn 和 Discord 一样拒绝增删托管角色
func (g *fakeGuild) managedIn(roleIDs []string) error {
	for _, r := range g.roles {
		if r.Managed && hasRole(roleIDs, r.ID) {
			return fmt.Errorf("HTTP 403 Forbidden: managed role %s: %w", r.ID, ErrForbidden)
		}
	}
	return nil
}

func (g *fakeGuild) RemoveRoles(_ context.Context, _, userID string, roleIDs []string, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.removeErr != nil {
		return g.removeErr
	}
	if err := g.managedIn(roleIDs); err != nil {
		return err
	}
	m := g.members[userID]
	drop := make(map[string]bool, len(roleIDs))
	for _, id := range roleIDs {
		drop[id] = true
	}
	kept := m.Roles[:0]
	for _, id := range m.Roles {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	m.Roles = kept
	return nil
}

func (g *fakeGuild) AddRoles(_ context.Context, _, userID string, roleIDs []string, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.addErr != nil {
		return g.addErr
	}
	if err := g.managedIn(roleIDs); err != nil {
		return err
	}
	m := g.members[userID]
	m.Roles = append(m.Roles, roleIDs...)
	return nil
}

// fakeChannel 内存版 ChannelGateway
type fakeChannel struct {
	mu        sync.Mutex
	next      int
	sent      []StatusMessage
	deleted   []string
	deleteErr error
}

func (c *fakeChannel) SendStatus(_ context.Context, _ string, msg StatusMessage) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	c.sent = append(c.sent, msg)
	return "m" + strconv.Itoa(c.next), nil
}

func (c *fakeChannel) DeleteMessage(_ context.Context, _, messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, messageID)
	return c.deleteErr
}

func (c *fakeChannel) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

// fixture 组装一套完整的 service
type fixture struct {
	db      *gorm.DB
	now     time.Time
	guild   *fakeGuild
	channel *fakeChannel
	events  []AuditEvent

	base      *Service
	store     *StoreService
	lock      *LockService
	status    *StatusService
	lifecycle *LifecycleService
	expiry    *ExpiryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:      newSQLiteDB(t),
		now:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		guild:   newFakeGuild(),
		channel: &fakeChannel{},
	}
	f.base = &Service{
		DB:      f.db,
		Now:     func() time.Time { return f.now },
		Config:  GuildConfig{SuspendedRoleID: testSuspendedRole, StatusChannelID: testStatusChannel},
		Guild:   f.guild,
		Channel: f.channel,
		LogNotifier: func(_ context.Context, ev AuditEvent) {
			f.events = append(f.events, ev)
		},
	}
	f.store = NewStoreService(f.base)
	f.lock = NewLockService(nil)
	f.status = NewStatusService(f.base, f.store)
	f.lifecycle = NewLifecycleService(f.base, f.store, f.lock, f.status)
	f.expiry = NewExpiryService(f.base, f.store, f.lifecycle, f.status, f.lock)
	return f
}

func (f *fixture) jail(t *testing.T, userID, label string) *BeginResult {
	t.Helper()
	res, err := f.lifecycle.Begin(context.Background(), BeginRequest{
		GuildID:       testGuild,
		UserID:        userID,
		IssuerID:      testIssuer,
		DurationLabel: label,
	})
	if err != nil {
		t.Fatalf("Begin(%s): %v", userID, err)
	}
	return res
}

func (f *fixture) count(t *testing.T, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Where(where, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func strPtr(s string) *string { return &s }
