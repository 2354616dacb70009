package jail_bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/cydxin/jail-bot/cons"
	"github.com/cydxin/jail-bot/service"
)

func memberOption(desc string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        cons.OptionMember,
		Description: desc,
		Required:    true,
	}
}

// durationOptionChoices 选项名是短名（1h），值是存库的 label（1 hour）
func durationOptionChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := service.DurationChoices()
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(choices))
	for _, c := range choices {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: c.Name, Value: c.Label})
	}
	return out
}

// applicationCommands 注册的全部斜杠命令
func applicationCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        cons.CommandJail,
			Description: "Jail a user for a specific time",
			Options: []*discordgo.ApplicationCommandOption{
				memberOption("The member to jail"),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        cons.OptionDuration,
					Description: "How long the sentence lasts",
					Required:    true,
					Choices:     durationOptionChoices(),
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        cons.OptionReason,
					Description: "Why the member is being jailed",
					MaxLength:   500,
				},
			},
		},
		{
			Name:        cons.CommandUnjail,
			Description: "Unjail an incarcerated user",
			Options:     []*discordgo.ApplicationCommandOption{memberOption("The member to release")},
		},
		{
			Name:        cons.CommandJailStatus,
			Description: "Check the status of a jailed user",
			Options:     []*discordgo.ApplicationCommandOption{memberOption("The member to check")},
		},
		{
			Name:        cons.CommandBackground,
			Description: "Show a user's criminal background",
			Options:     []*discordgo.ApplicationCommandOption{memberOption("The member to look up")},
		},
	}
}
