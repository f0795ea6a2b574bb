package bot

import (
	"context"
	"errors"
	"fmt"

	"order-bot/internal/domain"
)

var ErrUnknownPersona = errors.New("unknown persona")

// Handler processes events that arrived on one bot
type Handler interface {
	HandleEvent(ctx context.Context, ev Event) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, ev Event) error

func (f HandlerFunc) HandleEvent(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Router hands each event to the bot it arrived on
type Router struct {
	handlers map[domain.Persona]Handler
}

// NewRouter creates a router over the three personas
func NewRouter(customer, admin, delivery Handler) *Router {
	return &Router{
		handlers: map[domain.Persona]Handler{
			domain.PersonaCustomer: customer,
			domain.PersonaAdmin:    admin,
			domain.PersonaDelivery: delivery,
		},
	}
}

// Dispatch runs the handler for persona
func (r *Router) Dispatch(ctx context.Context, persona domain.Persona, ev Event) error {
	h, ok := r.handlers[persona]
	if !ok || h == nil {
		return fmt.Errorf("%w: %q", ErrUnknownPersona, persona)
	}
	return h.HandleEvent(ctx, ev)
}
