package jail_bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cydxin/jail-bot/models"
	"github.com/cydxin/jail-bot/service"
)

const (
	colorRed     = 0xE74C3C
	colorGreen   = 0x2ECC71
	colorOrange  = 0xE67E22
	colorBlurple = 0x5865F2
	colorGrey    = 0x95A5A6
)

func field(name, value string, inline bool) *discordgo.MessageEmbedField {
	if value == "" {
		value = "-"
	}
	return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline}
}

func thumbnail(url string) *discordgo.MessageEmbedThumbnail {
	if url == "" {
		return nil
	}
	return &discordgo.MessageEmbedThumbnail{URL: url}
}

// spoiler 折叠显示的 ID
func spoiler(id string) string {
	return "||" + id + "||"
}

// incarceratedEmbed jail 命令的确认
func incarceratedEmbed(res *service.BeginResult, issuerID string) *discordgo.MessageEmbed {
	s := res.Suspension
	e := &discordgo.MessageEmbed{
		Title:       "User Incarcerated",
		Description: fmt.Sprintf("%s has been incarcerated for %s.", service.Mention(s.UserID), s.DurationText),
		Color:       colorRed,
		Fields: []*discordgo.MessageEmbedField{
			field("Sentenced By", service.Mention(issuerID), true),
			field("Duration", s.DurationText, true),
			field("Release Time", service.DiscordTimestamp(res.EndsAt, "F"), false),
		},
		Thumbnail: thumbnail(res.Member.AvatarURL),
	}
	if s.Reason != "" {
		e.Fields = append(e.Fields, field("Reason", s.Reason, false))
	}
	return e
}

// releasedEmbed unjail 命令的确认
func releasedEmbed(res *service.EndResult, issuerID string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "User Released",
		Description: fmt.Sprintf("%s has been released and their roles have been restored.", service.Mention(res.Suspension.UserID)),
		Color:       colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			field("Released By", service.Mention(issuerID), true),
		},
		Thumbnail: thumbnail(res.Member.AvatarURL),
	}
}

// jailStatusEmbed jailstatus 命令
func jailStatusEmbed(v *service.StatusView, avatarURL string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Jail Status",
		Description: fmt.Sprintf("%s is currently incarcerated.", service.Mention(v.UserID)),
		Color:       colorOrange,
		Fields: []*discordgo.MessageEmbedField{
			field("Original Duration", v.DurationText, true),
			field("Time Remaining", v.RemainingText, true),
			field("Release Time", v.ReleaseText, false),
		},
		Thumbnail: thumbnail(avatarURL),
	}
}

// personalStatusEmbed 按钮查询，只给本人看
func personalStatusEmbed(v *service.StatusView) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Your Sentence",
		Description: "You are currently incarcerated.",
		Color:       colorOrange,
		Fields: []*discordgo.MessageEmbedField{
			field("Original Duration", v.DurationText, true),
			field("Time Remaining", v.RemainingText, true),
			field("Release Time", v.ReleaseText, false),
		},
	}
}

// backgroundEmbed 前科报告
func backgroundEmbed(rep *service.BackgroundReport) *discordgo.MessageEmbed {
	current := "Free"
	if rep.Current != nil {
		switch {
		case rep.Current.Expired:
			current = "Sentence expired, release pending"
		default:
			current = fmt.Sprintf("Incarcerated (%s remaining)", rep.Current.RemainingText)
		}
	}
	e := &discordgo.MessageEmbed{
		Title:       "Criminal Background",
		Description: fmt.Sprintf("Background check for %s.", service.Mention(rep.UserID)),
		Color:       colorGrey,
		Fields: []*discordgo.MessageEmbedField{
			field("Prior Sentences", fmt.Sprintf("%d", rep.RecordCount), true),
			field("Total Time Served", rep.TotalServedText, true),
			field("Current Status", current, false),
		},
	}
	if len(rep.Recent) > 0 {
		lines := make([]string, 0, len(rep.Recent))
		for _, r := range rep.Recent {
			lines = append(lines, recordLine(r))
		}
		e.Fields = append(e.Fields, field("Recent Records", strings.Join(lines, "\n"), false))
	}
	return e
}

func recordLine(r models.CriminalRecord) string {
	when := "unknown date"
	if t, err := models.ParseTime(r.StartTime); err == nil {
		when = service.DiscordTimestamp(t, "d")
	}
	outcome := "serving"
	if r.ReleaseType != nil {
		switch *r.ReleaseType {
		case models.ReleaseTimeServed:
			outcome = "time served"
		case models.ReleaseManualRelease:
			outcome = "released early"
		}
	}
	line := fmt.Sprintf("%s: %s (%s), by %s", when, r.DurationText, outcome, service.Mention(r.SuspendedBy))
	if r.Reason != "" {
		line += " for " + r.Reason
	}
	return line
}

// auditEmbed 审计频道消息
func auditEmbed(ev service.AuditEvent) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{Thumbnail: thumbnail(ev.AvatarURL)}
	if !ev.At.IsZero() {
		e.Timestamp = ev.At.Format(time.RFC3339)
	}
	switch ev.Action {
	case models.ActionSuspended:
		e.Title = "Sentencing Log"
		e.Description = fmt.Sprintf("%s was incarcerated.", service.Mention(ev.UserID))
		e.Color = colorRed
		e.Fields = []*discordgo.MessageEmbedField{
			field("Arresting Officer", service.Mention(ev.PerformedBy), true),
			field("Duration", ev.Duration, true),
		}
		if ev.Reason != "" {
			e.Fields = append(e.Fields, field("Reason", ev.Reason, false))
		}
	case models.ActionReleased:
		e.Title = "User Released"
		e.Description = fmt.Sprintf("%s was released.", service.Mention(ev.UserID))
		e.Color = colorGreen
		e.Fields = []*discordgo.MessageEmbedField{
			field("Released By", service.Mention(ev.PerformedBy), true),
		}
	default:
		e.Title = "Automatic Release"
		e.Description = fmt.Sprintf("%s's sentence has ended and roles have been restored.", service.Mention(ev.UserID))
		e.Color = colorGreen
		if ev.TimeServed != "" {
			e.Fields = append(e.Fields, field("Time Served", ev.TimeServed, true))
		}
	}
	e.Fields = append(e.Fields, field("Inmate ID", spoiler(ev.UserID), true))
	return e
}

// notifyLogChannel service.LogNotifier 的实现；发送失败只记日志
func (e *JailEngine) notifyLogChannel(ctx context.Context, ev service.AuditEvent) {
	if e.sender == nil || e.config.Guild.LogChannelID == "" {
		return
	}
	if err := e.sender.SendEmbed(ctx, e.config.Guild.LogChannelID, auditEmbed(ev)); err != nil {
		e.logger.Warn("send audit log failed", "action", ev.Action, "user_id", ev.UserID, "error", err)
	}
}
