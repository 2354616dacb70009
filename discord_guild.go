package jail_bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cydxin/jail-bot/service"
)

// embedSender 审计频道 / 前科频道发送 embed
type embedSender interface {
	SendEmbed(ctx context.Context, channelID string, e *discordgo.MessageEmbed) error
}

// discordGateway 用 discordgo session 实现 service.GuildGateway / service.ChannelGateway
type discordGateway struct {
	s *discordgo.Session
}

func newDiscordGateway(s *discordgo.Session) *discordGateway {
	return &discordGateway{s: s}
}

var (
	_ service.GuildGateway   = (*discordGateway)(nil)
	_ service.ChannelGateway = (*discordGateway)(nil)
	_ embedSender            = (*discordGateway)(nil)
)

func (g *discordGateway) Member(ctx context.Context, guildID, userID string) (*service.Member, error) {
	m, err := g.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, translateDiscordErr(err)
	}
	return toMember(m), nil
}

// Roles 优先读 state 缓存（GUILD_ROLE_* 事件会维护它），没有再走 REST
func (g *discordGateway) Roles(ctx context.Context, guildID string) ([]service.Role, error) {
	var roles []*discordgo.Role
	if g.s.StateEnabled && g.s.State != nil {
		if guild, err := g.s.State.Guild(guildID); err == nil && len(guild.Roles) > 0 {
			roles = guild.Roles
		}
	}
	if roles == nil {
		var err error
		roles, err = g.s.GuildRoles(guildID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, translateDiscordErr(err)
		}
	}
	out := make([]service.Role, 0, len(roles))
	for _, r := range roles {
		out = append(out, service.Role{ID: r.ID, Name: r.Name, Managed: r.Managed})
	}
	return out, nil
}

// RemoveRoles 读一次成员再整体 PATCH 角色列表，一次 REST 调用完成，不会只删掉一部分
func (g *discordGateway) RemoveRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error {
	drop := make(map[string]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		drop[id] = struct{}{}
	}
	return g.editRoles(ctx, guildID, userID, reason, func(cur []string) []string {
		kept := make([]string, 0, len(cur))
		for _, id := range cur {
			if _, ok := drop[id]; !ok {
				kept = append(kept, id)
			}
		}
		return kept
	})
}

func (g *discordGateway) AddRoles(ctx context.Context, guildID, userID string, roleIDs []string, reason string) error {
	return g.editRoles(ctx, guildID, userID, reason, func(cur []string) []string {
		seen := make(map[string]struct{}, len(cur))
		for _, id := range cur {
			seen[id] = struct{}{}
		}
		for _, id := range roleIDs {
			if _, ok := seen[id]; !ok {
				cur = append(cur, id)
				seen[id] = struct{}{}
			}
		}
		return cur
	})
}

func (g *discordGateway) editRoles(ctx context.Context, guildID, userID, reason string, apply func([]string) []string) error {
	m, err := g.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return translateDiscordErr(err)
	}
	roles := apply(append([]string(nil), m.Roles...))
	_, err = g.s.GuildMemberEdit(guildID, userID, &discordgo.GuildMemberParams{Roles: &roles},
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return fmt.Errorf("edit member roles: %w", translateDiscordErr(err))
	}
	return nil
}

func (g *discordGateway) SendStatus(ctx context.Context, channelID string, msg service.StatusMessage) (string, error) {
	sent, err := g.s.ChannelMessageSendComplex(channelID, statusMessageSend(msg), discordgo.WithContext(ctx))
	if err != nil {
		return "", translateDiscordErr(err)
	}
	return sent.ID, nil
}

func (g *discordGateway) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return g.s.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (g *discordGateway) SendEmbed(ctx context.Context, channelID string, e *discordgo.MessageEmbed) error {
	_, err := g.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{e}}, discordgo.WithContext(ctx))
	return err
}

// translateDiscordErr 10007/10013 -> ErrMemberNotFound，HTTP 403 -> ErrForbidden
func translateDiscordErr(err error) error {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return err
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser:
			return service.ErrMemberNotFound
		}
	}
	if restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %v", service.ErrForbidden, err)
	}
	return err
}

func toMember(m *discordgo.Member) *service.Member {
	out := &service.Member{Roles: append([]string(nil), m.Roles...)}
	if m.User != nil {
		out.UserID = m.User.ID
		out.Username = m.User.Username
		out.Bot = m.User.Bot
		out.DisplayName = m.User.GlobalName
		out.AvatarURL = m.AvatarURL("256")
	}
	if m.Nick != "" {
		out.DisplayName = m.Nick
	}
	if out.DisplayName == "" {
		out.DisplayName = out.Username
	}
	return out
}

// statusMessageSend 状态消息：一个 embed + “剩余时间”按钮
func statusMessageSend(msg service.StatusMessage) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       msg.Title,
			Description: msg.Description,
			Color:       colorBlurple,
			Footer:      &discordgo.MessageEmbedFooter{Text: msg.Footer},
			Timestamp:   msg.Timestamp.Format(time.RFC3339),
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    msg.ButtonLabel,
					Style:    discordgo.SecondaryButton,
					CustomID: msg.ButtonID,
				},
			}},
		},
	}
}
