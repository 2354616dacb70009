package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// 审计动作（suspension_logs.action）
const (
	ActionSuspended = "SUSPENDED"
	ActionReleased  = "RELEASED"
	ActionExpired   = "EXPIRED"
)

// 出狱类型（criminal_records.release_type）
const (
	ReleaseTimeServed    = "time_served"
	ReleaseManualRelease = "manual_release"
)

// SystemActorID 自动到期释放时 performed_by 的取值
const SystemActorID = "0"

// Suspension 关押表
// 每个用户一行（user_id 主键），重复关押走 upsert 覆盖；释放时只把 is_active 置 0，不删除。
type Suspension struct {
	UserID        string         `gorm:"primaryKey;size:32"`     // 被关押用户
	GuildID       string         `gorm:"size:32;index;not null"` // 所在服务器
	SuspendedBy   string         `gorm:"size:32;not null"`       // 执行人
	StartTime     string         `gorm:"size:40;not null"`       // 开始时间（可排序文本，见 timefmt.go）
	EndTime       string         `gorm:"size:40;index;not null"` // 结束时间
	DurationText  string         `gorm:"size:32;not null"`       // 原始时长文本（只用于展示，不反推）
	PreviousRoles datatypes.JSON `gorm:"type:json;not null"`     // 关押前角色 ID 列表（JSON 数组，保序，不含 @everyone）
	IsActive      bool           `gorm:"index;not null"`         // 是否仍在关押
	Reason        string         `gorm:"size:512"`               // 原因，可为空
}

func (Suspension) TableName() string { return "suspensions" }

// RoleIDs 解析 PreviousRoles；历史数据里可能是数字数组，统一转成字符串
func (s *Suspension) RoleIDs() []string {
	return DecodeRoleIDs(s.PreviousRoles)
}

// Start 解析开始时间
func (s *Suspension) Start() (time.Time, error) { return ParseTime(s.StartTime) }

// End 解析结束时间
func (s *Suspension) End() (time.Time, error) { return ParseTime(s.EndTime) }

// SuspensionLog 审计日志表（只追加，不修改）
type SuspensionLog struct {
	ID          uint64 `gorm:"primarykey"`
	UserID      string `gorm:"size:32;index;not null"`
	GuildID     string `gorm:"size:32;not null"`
	Action      string `gorm:"size:16;index;not null"` // SUSPENDED / RELEASED / EXPIRED
	PerformedBy string `gorm:"size:32;not null"`       // 自动到期为 SystemActorID
	Timestamp   string `gorm:"size:40;index;not null"`
	Details     string `gorm:"size:1024"`
}

func (SuspensionLog) TableName() string { return "suspension_logs" }

// CriminalRecord 前科记录（每次关押一条，永不删除）
// 只有 ActualEndTime / ReleaseType 会在释放时写入一次。
type CriminalRecord struct {
	ID            uint64         `gorm:"primarykey"`
	UserID        string         `gorm:"size:32;index:idx_record_user_guild,priority:1;not null"`
	GuildID       string         `gorm:"size:32;index:idx_record_user_guild,priority:2;not null"`
	SuspendedBy   string         `gorm:"size:32;not null"`
	StartTime     string         `gorm:"size:40;not null"`
	EndTime       string         `gorm:"size:40;not null"`
	DurationText  string         `gorm:"size:32;not null"`
	PreviousRoles datatypes.JSON `gorm:"type:json"`
	Reason        string         `gorm:"size:512"`
	ActualEndTime *string        `gorm:"size:40"` // 释放前为 NULL
	ReleaseType   *string        `gorm:"size:20"` // time_served / manual_release
}

func (CriminalRecord) TableName() string { return "criminal_records" }

// Released 是否已经写入实际出狱时间
func (r *CriminalRecord) Released() bool {
	return r.ActualEndTime != nil && *r.ActualEndTime != ""
}

// StickyMessage 置底状态消息（每个频道一行，发新消息时覆盖）
type StickyMessage struct {
	ChannelID   string `gorm:"primaryKey;size:32"`
	GuildID     string `gorm:"size:32;index"`
	MessageID   string `gorm:"size:32;not null"`
	LastUpdated string `gorm:"size:40;not null"`
}

func (StickyMessage) TableName() string { return "sticky_messages" }

// MigrateModels AutoMigrate 使用的全部表
var MigrateModels = []any{
	&Suspension{},
	&SuspensionLog{},
	&CriminalRecord{},
	&StickyMessage{},
}

// EncodeRoleIDs 角色列表转 JSON（nil 也写成 []，保持 not null）
func EncodeRoleIDs(ids []string) datatypes.JSON {
	if ids == nil {
		ids = []string{}
	}
	b, _ := json.Marshal(ids)
	return datatypes.JSON(b)
}

// DecodeRoleIDs 兼容字符串数组与数字数组两种历史格式；解析失败返回空
func DecodeRoleIDs(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err == nil {
		return ids
	}
	var nums []json.Number
	if err := json.Unmarshal(raw, &nums); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(nums))
	for _, n := range nums {
		out = append(out, n.String())
	}
	return out
}
