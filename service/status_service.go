package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/cydxin/jail-bot/cons"
)

// StatusService 状态频道的置底消息
// 每次刷新都删旧消息再发新消息，保证它一直在频道最底部。
type StatusService struct {
	*Service
	Store *StoreService

	mu sync.Mutex // 刷新串行化，避免并发时留下两条状态消息
}

func NewStatusService(s *Service, store *StoreService) *StatusService {
	log.Println("NewStatusService")
	return &StatusService{Service: s, Store: store}
}

// StatusDescription 按人数返回文案（0 / 1 / N）
func StatusDescription(n int) string {
	switch n {
	case 0:
		return "The cells are empty. No one is currently incarcerated."
	case 1:
		return "There is currently **1** inmate serving a sentence."
	default:
		return fmt.Sprintf("There are currently **%d** inmates serving sentences.", n)
	}
}

// Refresh 重新发布状态消息
func (s *StatusService) Refresh(ctx context.Context, guildID, channelID string) error {
	if channelID == "" || s.Channel == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	active, err := s.Store.ListActive(ctx, guildID, now)
	if err != nil {
		return fmt.Errorf("list active: %w", err)
	}
	s.Metrics.SetActive(len(active))

	prev, err := s.Store.GetSticky(ctx, channelID)
	if err != nil {
		return fmt.Errorf("get sticky: %w", err)
	}
	if prev != nil && prev.MessageID != "" {
		// 旧消息可能已被手动删除
		if err := s.Channel.DeleteMessage(ctx, channelID, prev.MessageID); err != nil {
			s.logger().Debug("delete previous status message", "channel_id", channelID, "message_id", prev.MessageID, "error", err)
		}
	}

	msgID, err := s.Channel.SendStatus(ctx, channelID, StatusMessage{
		Title:       cons.StatusTitle,
		Description: StatusDescription(len(active)),
		Footer:      cons.StatusFooter,
		ButtonLabel: cons.StatusButtonLabel,
		ButtonID:    cons.CustomIDTimeRemaining,
		Timestamp:   now,
	})
	if err != nil {
		return fmt.Errorf("send status: %w", err)
	}
	if err := s.Store.SetSticky(ctx, channelID, guildID, msgID); err != nil {
		return fmt.Errorf("save sticky: %w", err)
	}
	return nil
}
