package transport

import (
	"context"
	"net/http"

	"order-bot/internal/bot"
	"order-bot/internal/cache"
	"order-bot/internal/domain"
	"order-bot/internal/middleware"
	"order-bot/internal/telegram"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// StatusText is served on GET / for uptime checks
const StatusText = "Bot ishlayapti ✅"

// WebhookUpdate is the Telegram update body. The top level update_id is
// required so empty or foreign payloads are rejected.
type WebhookUpdate struct {
	tgbotapi.Update
	UpdateID int `json:"update_id" validate:"required,gt=0"`
}

// Dispatcher routes decoded events to a persona
type Dispatcher interface {
	Dispatch(ctx context.Context, persona domain.Persona, ev bot.Event) error
}

// WebhookHandler receives webhook posts for the three bots
type WebhookHandler struct {
	router Dispatcher
	dedup  cache.UpdateDeduplicator
	logger *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(router Dispatcher, dedup cache.UpdateDeduplicator, logger *zap.Logger) *WebhookHandler {
	if dedup == nil {
		dedup = cache.NewNoopDeduplicator()
	}
	return &WebhookHandler{
		router: router,
		dedup:  dedup,
		logger: logger,
	}
}

// RegisterRoutes registers one webhook per persona, wrapped in
// webhookMiddleware. The status page is mounted separately with Status.
func (h *WebhookHandler) RegisterRoutes(r chi.Router, webhookMiddleware ...func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(webhookMiddleware...)
		for _, persona := range domain.Personas {
			r.Post(WebhookPath(persona), h.Webhook(persona))
		}
	})
}

// WebhookPath is the route a persona's bot posts to
func WebhookPath(persona domain.Persona) string {
	return "/" + string(persona)
}

// Status handles GET /
func (h *WebhookHandler) Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(StatusText))
}

// Webhook returns the handler for updates arriving on persona's bot
func (h *WebhookHandler) Webhook(persona domain.Persona) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update WebhookUpdate

		if err := middleware.DecodeAndValidate(r, &update); err != nil {
			h.logger.Debug("Webhook payload rejected", zap.String("persona", string(persona)), zap.Error(err))

			if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
				middleware.RespondWithValidationErrors(w, validationErrors)
				return
			}

			middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		logger := h.logger.With(
			zap.String("persona", string(persona)),
			zap.Int("update_id", update.UpdateID),
		)

		claimed, err := h.dedup.Claim(r.Context(), persona, update.UpdateID)
		if err != nil {
			// handle anyway; a lost marker only risks a duplicate
			logger.Warn("Update deduplication unavailable", zap.Error(err))
			claimed = true
		}
		if !claimed {
			logger.Info("Duplicate update skipped")
			respondOK(w)
			return
		}

		ev, ok := telegram.Decode(update.Update)
		if !ok {
			logger.Debug("Update ignored")
			respondOK(w)
			return
		}

		if err := h.router.Dispatch(r.Context(), persona, ev); err != nil {
			logger.Error("Failed to process update",
				zap.Int64("chat_id", ev.ChatID),
				zap.Stringer("event", ev.Kind),
				zap.Error(err),
			)

			// let Telegram's redelivery run the update again
			if err := h.dedup.Release(context.WithoutCancel(r.Context()), persona, update.UpdateID); err != nil {
				logger.Warn("Failed to release update claim", zap.Error(err))
			}

			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to process update")
			return
		}

		respondOK(w)
	}
}

func respondOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
