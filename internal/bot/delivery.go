package bot

import (
	"context"
	"errors"
	"fmt"

	"order-bot/internal/messenger"
	"order-bot/internal/repository"
	"order-bot/internal/service"

	"go.uber.org/zap"
)

// DeliveryBot lets couriers confirm delivered orders
type DeliveryBot struct {
	orders service.OrderService
	sender messenger.Sender
	logger *zap.Logger
}

// NewDeliveryBot creates the delivery persona
func NewDeliveryBot(orders service.OrderService, sender messenger.Sender, logger *zap.Logger) *DeliveryBot {
	return &DeliveryBot{
		orders: orders,
		sender: sender,
		logger: logger,
	}
}

func (b *DeliveryBot) HandleEvent(ctx context.Context, ev Event) error {
	if ev.Kind == EventStart {
		return b.sender.Send(ctx, messenger.Text(ev.ChatID, textDeliveryWelcome))
	}
	if ev.Kind != EventText {
		return nil
	}

	orderID, ok := ParseDeliveryCommand(ev.Text)
	if !ok {
		return nil
	}

	if _, err := b.orders.MarkDelivered(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			b.logger.Info("Delivery confirmation for unknown order", zap.String("order_id", orderID))
			return b.sender.Send(ctx, messenger.Text(ev.ChatID, fmt.Sprintf(textOrderNotFound, orderID)))
		}
		return err
	}

	return b.sender.Send(ctx, messenger.Text(ev.ChatID, fmt.Sprintf(textDeliveryConfirmed, orderID)))
}
