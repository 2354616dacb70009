package response

import "github.com/bwmarrin/discordgo"

// Reply 斜杠命令 / 按钮的回复
type Reply struct {
	Code       int
	Msg        string // 纯文本内容，可与 Embeds 同时存在
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
	Ephemeral  bool // 仅调用者可见
}

// Text 纯文本回复
func Text(code int, msg string) *Reply {
	return &Reply{Code: code, Msg: msg}
}

// Embed 成功回复，带一个 embed
func Embed(e *discordgo.MessageEmbed) *Reply {
	return &Reply{Code: CodeSuccess, Embeds: []*discordgo.MessageEmbed{e}}
}

// AsEphemeral 标记为仅调用者可见
func (r *Reply) AsEphemeral() *Reply {
	r.Ephemeral = true
	return r
}

// OK 是否成功
func (r *Reply) OK() bool { return r != nil && r.Code == CodeSuccess }

func (r *Reply) flags() discordgo.MessageFlags {
	if r.Ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

// InteractionData 用于 InteractionRespond
func (r *Reply) InteractionData() *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content:    r.Msg,
		Embeds:     r.Embeds,
		Components: r.Components,
		Flags:      r.flags(),
	}
}

// WebhookParams 用于 defer 之后的 FollowupMessageCreate
func (r *Reply) WebhookParams() *discordgo.WebhookParams {
	return &discordgo.WebhookParams{
		Content:    r.Msg,
		Embeds:     r.Embeds,
		Components: r.Components,
		Flags:      r.flags(),
	}
}
