package bot

import (
	"context"
	"fmt"
	"strings"

	"order-bot/internal/messenger"
	"order-bot/internal/service"

	"go.uber.org/zap"
)

// AdminBot answers the operator's request for pending orders. Only the
// configured admin chat may list them.
type AdminBot struct {
	orders      service.OrderService
	sender      messenger.Sender
	adminChatID int64
	logger      *zap.Logger
}

// NewAdminBot creates the administrative persona
func NewAdminBot(orders service.OrderService, sender messenger.Sender, adminChatID int64, logger *zap.Logger) *AdminBot {
	return &AdminBot{
		orders:      orders,
		sender:      sender,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

func (b *AdminBot) HandleEvent(ctx context.Context, ev Event) error {
	switch {
	case ev.Kind == EventStart:
		return b.sender.Send(ctx, messenger.Message{
			ChatID: ev.ChatID,
			Text:   textAdminWelcome,
			Keyboard: messenger.ReplyKeyboard{
				Rows:   [][]messenger.ReplyButton{{{Text: OrdersCommand}}},
				Resize: true,
			},
		})
	case ev.Kind == EventText && strings.EqualFold(strings.TrimSpace(ev.Text), OrdersCommand):
		if ev.ChatID != b.adminChatID {
			b.logger.Warn("Pending orders requested from foreign chat", zap.Int64("chat_id", ev.ChatID))
			return nil
		}
		return b.listPending(ctx, ev.ChatID)
	}
	return nil
}

func (b *AdminBot) listPending(ctx context.Context, chatID int64) error {
	orders, err := b.orders.PendingOrders(ctx)
	if err != nil {
		return err
	}

	if len(orders) == 0 {
		return b.sender.Send(ctx, messenger.Text(chatID, textNoPendingOrders))
	}

	for _, order := range orders {
		msg := service.OrderMessage(chatID, service.PendingOrderHeader, order)
		if err := b.sender.Send(ctx, msg); err != nil {
			return fmt.Errorf("failed to send order %s: %w", order.ID, err)
		}
	}

	b.logger.Info("Pending orders listed",
		zap.Int64("chat_id", chatID),
		zap.Int("count", len(orders)),
	)
	return nil
}
