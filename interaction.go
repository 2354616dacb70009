package jail_bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/cydxin/jail-bot/cons"
	"github.com/cydxin/jail-bot/response"
)

// 单次交互处理超时（Discord 的 interaction token 有效期远长于此）
const interactionTimeout = 30 * time.Second

// commandRequest 从 interaction 解析出的参数
type commandRequest struct {
	GuildID      string
	ChannelID    string
	CallerID     string
	TargetID     string
	TargetAvatar string
	Duration     string
	Reason       string
}

type commandHandler func(ctx context.Context, req *commandRequest) *response.Reply

func (e *JailEngine) commandHandlers() map[string]commandHandler {
	return map[string]commandHandler{
		cons.CommandJail:       e.handleJail,
		cons.CommandUnjail:     e.handleUnjail,
		cons.CommandJailStatus: e.handleJailStatus,
		cons.CommandBackground: e.handleBackground,
	}
}

func callerID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// parseCommand 取出 member / duration / reason 参数
func parseCommand(i *discordgo.Interaction) *commandRequest {
	req := &commandRequest{GuildID: i.GuildID, ChannelID: i.ChannelID, CallerID: callerID(i)}
	if i.Type != discordgo.InteractionApplicationCommand {
		return req
	}
	data := i.ApplicationCommandData()
	for _, opt := range data.Options {
		switch {
		case opt.Name == cons.OptionMember && opt.Type == discordgo.ApplicationCommandOptionUser:
			req.TargetID = opt.UserValue(nil).ID
		case opt.Name == cons.OptionDuration && opt.Type == discordgo.ApplicationCommandOptionString:
			req.Duration = opt.StringValue()
		case opt.Name == cons.OptionReason && opt.Type == discordgo.ApplicationCommandOptionString:
			req.Reason = opt.StringValue()
		}
	}
	if data.Resolved != nil && req.TargetID != "" {
		if m, ok := data.Resolved.Members[req.TargetID]; ok && m != nil {
			if u, ok := data.Resolved.Users[req.TargetID]; ok && u != nil {
				m.User = u
				req.TargetAvatar = m.AvatarURL("256")
			}
		} else if u, ok := data.Resolved.Users[req.TargetID]; ok && u != nil {
			req.TargetAvatar = u.AvatarURL("256")
		}
	}
	return req
}

// registerHandlers 挂到 session 上
func (e *JailEngine) registerHandlers(s *discordgo.Session) {
	s.AddHandler(e.onReady)
	s.AddHandler(e.onInteractionCreate)
	s.AddHandler(e.onMessageCreate)
}

func (e *JailEngine) onReady(s *discordgo.Session, r *discordgo.Ready) {
	e.logger.Info("logged in", "user", r.User.Username, "user_id", r.User.ID, "guilds", len(r.Guilds))

	appID := r.User.ID
	if r.Application != nil && r.Application.ID != "" {
		appID = r.Application.ID
	}
	if _, err := s.ApplicationCommandBulkOverwrite(appID, e.config.Guild.GuildID, applicationCommands()); err != nil {
		e.logger.Error("register commands failed", "error", err)
	} else {
		e.logger.Info("commands registered", "guild_id", e.config.Guild.GuildID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()
	e.refreshStatus(ctx, e.statusGuildID(s))
}

// statusGuildID 状态频道所属服务器
func (e *JailEngine) statusGuildID(s *discordgo.Session) string {
	if e.config.Guild.GuildID != "" {
		return e.config.Guild.GuildID
	}
	if e.config.Guild.StatusChannelID == "" {
		return ""
	}
	if ch, err := s.State.Channel(e.config.Guild.StatusChannelID); err == nil {
		return ch.GuildID
	}
	if ch, err := s.Channel(e.config.Guild.StatusChannelID); err == nil {
		return ch.GuildID
	}
	return ""
}

func (e *JailEngine) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		e.dispatchCommand(ctx, s, i.Interaction)
	case discordgo.InteractionMessageComponent:
		if i.MessageComponentData().CustomID != cons.CustomIDTimeRemaining {
			return
		}
		// 任何人都能查自己的剩余时间，不走白名单
		e.respond(s, i.Interaction, e.handleTimeRemaining(ctx, parseCommand(i.Interaction)))
	}
}

func (e *JailEngine) dispatchCommand(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) {
	name := i.ApplicationCommandData().Name
	h, ok := e.commandHandlers()[name]
	if !ok {
		return
	}
	if denied := e.checkRole(i.Member); denied != nil {
		e.respond(s, i, denied)
		return
	}

	// 角色变更可能超过 3 秒，先 defer 再 followup
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		e.logger.Error("defer interaction failed", "command", name, "error", err)
		return
	}

	reply := h(ctx, parseCommand(i))
	if _, err := s.FollowupMessageCreate(i, true, reply.WebhookParams()); err != nil {
		e.logger.Error("followup failed", "command", name, "code", reply.Code, "error", err)
	}
}

func (e *JailEngine) respond(s *discordgo.Session, i *discordgo.Interaction, reply *response.Reply) {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: reply.InteractionData(),
	})
	if err != nil {
		e.logger.Error("interaction respond failed", "code", reply.Code, "error", err)
	}
}

// onMessageCreate 状态频道里有人发言就把状态消息重新顶到底部
func (e *JailEngine) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if e.config.Guild.StatusChannelID == "" || m.ChannelID != e.config.Guild.StatusChannelID {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()
	e.refreshStatus(ctx, m.GuildID)
}
