package middleware

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/cydxin/jail-bot/response"
)

const defaultDenyMessage = "You don't have permission to use this command."

// RoleAuthOptions 斜杠命令的角色白名单
type RoleAuthOptions struct {
	// AllowedRoles 拥有其中任一角色即可使用
	AllowedRoles []string
	// DenyMessage 默认 defaultDenyMessage
	DenyMessage string
}

func (o *RoleAuthOptions) withDefaults() RoleAuthOptions {
	if o == nil {
		return RoleAuthOptions{DenyMessage: defaultDenyMessage}
	}
	out := *o
	if strings.TrimSpace(out.DenyMessage) == "" {
		out.DenyMessage = defaultDenyMessage
	}
	return out
}

// RoleChecker 通过时返回 nil，否则返回给调用者的仅自己可见回复
type RoleChecker func(member *discordgo.Member) *response.Reply

/*
RequireAllowedRole 命令鉴权：

- 私信里触发（member 为空）一律拒绝
- 白名单为空时拒绝所有人，避免配置遗漏导致谁都能关人

使用：deny := middleware.RequireAllowedRole(&middleware.RoleAuthOptions{AllowedRoles: ids})
*/
func RequireAllowedRole(opt *RoleAuthOptions) RoleChecker {
	cfg := opt.withDefaults()
	allowed := make(map[string]struct{}, len(cfg.AllowedRoles))
	for _, id := range cfg.AllowedRoles {
		if id = strings.TrimSpace(id); id != "" {
			allowed[id] = struct{}{}
		}
	}

	return func(member *discordgo.Member) *response.Reply {
		if member != nil {
			for _, id := range member.Roles {
				if _, ok := allowed[id]; ok {
					return nil
				}
			}
		}
		return response.Text(response.CodePermissionDeny, cfg.DenyMessage).AsEphemeral()
	}
}
