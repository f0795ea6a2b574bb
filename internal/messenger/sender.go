package messenger

import "context"

// Sender delivers messages through one bot identity
type Sender interface {
	Send(ctx context.Context, msg Message) error
	// Answer acknowledges an inline button press with a short toast
	Answer(ctx context.Context, callbackID, text string) error
}
