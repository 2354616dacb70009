package jail_bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/cydxin/jail-bot/response"
	"github.com/cydxin/jail-bot/service"
)

// jailErrorReply 业务错误 -> 回复文本
// verb 只用于兜底文案：jailing / releasing
func jailErrorReply(err error, targetID, verb string) *response.Reply {
	m := service.Mention(targetID)
	switch {
	case errors.Is(err, service.ErrAlreadySuspended):
		return response.Text(response.CodeAlreadyJailed, fmt.Sprintf("%s is already locked up.", m))
	case errors.Is(err, service.ErrNotSuspended):
		return response.Text(response.CodeNotJailed, fmt.Sprintf("%s is not currently incarcerated.", m))
	case errors.Is(err, service.ErrRoleNotFound):
		return response.Text(response.CodeRoleNotFound, "Incarcerated role not found. Please check the role ID.")
	case errors.Is(err, service.ErrInvalidDuration):
		return response.Text(response.CodeInvalidDuration, "Invalid duration specified.")
	case errors.Is(err, service.ErrMemberNotFound):
		return response.Text(response.CodeMemberNotFound, fmt.Sprintf("%s is not a member of this server.", m))
	case errors.Is(err, service.ErrBusy):
		return response.Text(response.CodeBusy, fmt.Sprintf("Another action for %s is already in progress. Please try again shortly.", m))
	case service.IsForbidden(err):
		if verb == "jailing" {
			return response.Text(response.CodePermissionDeny, fmt.Sprintf("I don't have the authority to sentence %s.", m))
		}
		return response.Text(response.CodePermissionDeny, fmt.Sprintf("I don't have permission to manage roles for %s.", m))
	}
	code := response.CodeInternalError
	var pe *service.PlatformError
	if errors.As(err, &pe) {
		code = response.CodePlatformError
	}
	return response.Text(code, fmt.Sprintf("An error occurred while %s %s: %v", verb, m, err))
}

func (e *JailEngine) handleJail(ctx context.Context, req *commandRequest) *response.Reply {
	if req.TargetID == "" {
		return response.Text(response.CodeParamError, "Please specify a member.")
	}
	res, err := e.Lifecycle.Begin(ctx, service.BeginRequest{
		GuildID:       req.GuildID,
		UserID:        req.TargetID,
		IssuerID:      req.CallerID,
		DurationLabel: req.Duration,
		Reason:        req.Reason,
	})
	if err != nil {
		e.logger.Warn("jail failed", "user_id", req.TargetID, "issuer", req.CallerID, "error", err)
		return jailErrorReply(err, req.TargetID, "jailing")
	}
	e.logger.Info("user jailed", "user_id", req.TargetID, "issuer", req.CallerID, "duration", res.Suspension.DurationText)
	return response.Embed(incarceratedEmbed(res, req.CallerID))
}

func (e *JailEngine) handleUnjail(ctx context.Context, req *commandRequest) *response.Reply {
	if req.TargetID == "" {
		return response.Text(response.CodeParamError, "Please specify a member.")
	}
	issuer := req.CallerID
	res, err := e.Lifecycle.End(ctx, service.EndRequest{
		GuildID: req.GuildID,
		UserID:  req.TargetID,
		EndedBy: &issuer,
	})
	if err != nil {
		e.logger.Warn("unjail failed", "user_id", req.TargetID, "issuer", issuer, "error", err)
		return jailErrorReply(err, req.TargetID, "releasing")
	}
	e.logger.Info("user released", "user_id", req.TargetID, "issuer", issuer)
	return response.Embed(releasedEmbed(res, issuer))
}

func (e *JailEngine) handleJailStatus(ctx context.Context, req *commandRequest) *response.Reply {
	if req.TargetID == "" {
		return response.Text(response.CodeParamError, "Please specify a member.")
	}
	v, err := e.Lifecycle.Status(ctx, req.TargetID)
	if err != nil {
		return jailErrorReply(err, req.TargetID, "checking")
	}
	if v.Expired {
		return response.Text(response.CodeSuccess,
			fmt.Sprintf("%s's sentence has expired but hasn't been processed yet.", service.Mention(req.TargetID)))
	}
	return response.Embed(jailStatusEmbed(v, req.TargetAvatar))
}

// handleBackground 配置了前科频道时报告发到那里，命令只回一句提示
func (e *JailEngine) handleBackground(ctx context.Context, req *commandRequest) *response.Reply {
	if req.TargetID == "" {
		return response.Text(response.CodeParamError, "Please specify a member.")
	}
	rep, err := e.Lifecycle.Background(ctx, req.GuildID, req.TargetID)
	if err != nil {
		return jailErrorReply(err, req.TargetID, "checking")
	}
	emb := backgroundEmbed(rep)
	emb.Thumbnail = thumbnail(req.TargetAvatar)

	ch := e.config.Guild.BackgroundChannelID
	if ch == "" || ch == req.ChannelID || e.sender == nil {
		return response.Embed(emb)
	}
	if err := e.sender.SendEmbed(ctx, ch, emb); err != nil {
		e.logger.Warn("send background report failed", "channel_id", ch, "user_id", req.TargetID, "error", err)
		return response.Embed(emb)
	}
	return response.Text(response.CodeSuccess,
		fmt.Sprintf("Background report for %s posted in <#%s>.", service.Mention(req.TargetID), ch))
}

// handleTimeRemaining 状态消息上的按钮，只查调用者自己
func (e *JailEngine) handleTimeRemaining(ctx context.Context, req *commandRequest) *response.Reply {
	v, err := e.Lifecycle.Status(ctx, req.CallerID)
	switch {
	case errors.Is(err, service.ErrNotSuspended):
		return response.Text(response.CodeNotJailed, "You are not currently incarcerated.").AsEphemeral()
	case err != nil:
		e.logger.Error("time remaining lookup failed", "user_id", req.CallerID, "error", err)
		return response.Text(response.CodeInternalError, "Could not look up your sentence right now.").AsEphemeral()
	case v.Expired:
		return response.Text(response.CodeSuccess, "Your sentence has ended. You will be released shortly.").AsEphemeral()
	}
	return response.Embed(personalStatusEmbed(v)).AsEphemeral()
}
