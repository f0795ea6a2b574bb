package messenger

import (
	"context"

	"go.uber.org/zap"
)

// Notifier sends messages that follow a durable write. Failures are logged
// and swallowed; the write that triggered the notification stands.
type Notifier struct {
	sender Sender
	logger *zap.Logger
	name   string
}

// NewNotifier wraps sender for best-effort delivery. name labels log lines.
func NewNotifier(sender Sender, name string, logger *zap.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		logger: logger,
		name:   name,
	}
}

// Notify sends msg and reports whether it was delivered
func (n *Notifier) Notify(ctx context.Context, msg Message) bool {
	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Error("Notification failed",
			zap.String("channel", n.name),
			zap.Int64("chat_id", msg.ChatID),
			zap.Bool("photo", msg.IsPhoto()),
			zap.Error(err),
		)
		return false
	}

	n.logger.Debug("Notification sent",
		zap.String("channel", n.name),
		zap.Int64("chat_id", msg.ChatID),
	)
	return true
}
