package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"order-bot/internal/bot"
	"order-bot/internal/cache"
	"order-bot/internal/config"
	"order-bot/internal/database"
	"order-bot/internal/domain"
	"order-bot/internal/messenger"
	custommiddleware "order-bot/internal/middleware"
	"order-bot/internal/repository"
	"order-bot/internal/service"
	"order-bot/internal/session"
	"order-bot/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const sweepInterval = 10 * time.Minute

// Dependencies are the external resources the server runs on
type Dependencies struct {
	Repositories *repository.Repositories
	Senders      map[domain.Persona]messenger.Sender
	// Redis is optional; without it updates are not deduplicated and
	// the public pages are not rate limited
	Redis *redis.Client
	// StoreHealth pings the record store
	StoreHealth func(context.Context) error
	// Closers release resources on shutdown, in order
	Closers []func(context.Context) error
}

type Server struct {
	*http.Server
	config   *config.Config
	logger   *zap.Logger
	sessions *session.Store
	closers  []func(context.Context) error
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) (*Server, error) {
	for _, persona := range domain.Personas {
		if deps.Senders[persona] == nil {
			return nil, fmt.Errorf("missing sender for persona %q", persona)
		}
	}

	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Initialize session registry and services
	sessions := session.NewStore(cfg.Session.TTL, logger.Named("session"))
	orderService := service.NewOrderService(
		deps.Repositories.Orders,
		deps.Senders[domain.PersonaAdmin],
		deps.Senders[domain.PersonaCustomer],
		cfg.Telegram.AdminChatID,
		logger.Named("orders"),
	)

	// Initialize bots
	customerBot := bot.NewCustomerBot(
		sessions,
		deps.Repositories.Products,
		deps.Repositories.Customers,
		orderService,
		deps.Senders[domain.PersonaCustomer],
		logger.Named(string(domain.PersonaCustomer)),
	)
	adminBot := bot.NewAdminBot(orderService, deps.Senders[domain.PersonaAdmin], cfg.Telegram.AdminChatID, logger.Named(string(domain.PersonaAdmin)))
	deliveryBot := bot.NewDeliveryBot(orderService, deps.Senders[domain.PersonaDelivery], logger.Named(string(domain.PersonaDelivery)))

	// Health check endpoint
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{"status": "ok"}
		status := http.StatusOK

		if deps.StoreHealth != nil {
			store := database.Health(r.Context(), deps.StoreHealth)
			health["store"] = store
			if store["status"] != "up" {
				health["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}

		custommiddleware.RespondWithJSON(w, status, health)
	}

	// Initialize handlers
	dedup := cache.NewNoopDeduplicator()
	var publicMiddleware []func(http.Handler) http.Handler
	if deps.Redis != nil {
		dedup = cache.NewRedisDeduplicator(deps.Redis, cache.DefaultDedupTTL)
		// only the public pages are rate limited
		if cfg.Server.RateLimitRequests > 0 {
			publicMiddleware = append(publicMiddleware, custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
				RequestsPerWindow: cfg.Server.RateLimitRequests,
				Window:            time.Minute,
				KeyPrefix:         "public_rate_limit",
			}, logger))
		}
	}

	webhookHandler := transport.NewWebhookHandler(bot.NewRouter(customerBot, adminBot, deliveryBot), dedup, logger)

	// Register routes
	router.Group(func(r chi.Router) {
		r.Use(publicMiddleware...)
		r.Get("/health", healthHandler)
		r.Get("/", webhookHandler.Status)
	})
	webhookHandler.RegisterRoutes(router, custommiddleware.WebhookSecretMiddleware(cfg.Telegram.WebhookSecret, logger))

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:   cfg,
		logger:   logger,
		sessions: sessions,
		closers:  deps.Closers,
	}

	return server, nil
}

// RunJanitor evicts idle sessions until ctx is cancelled
func (s *Server) RunJanitor(ctx context.Context) {
	s.sessions.Run(ctx, sweepInterval)
}

// Sessions exposes the session registry
func (s *Server) Sessions() *session.Store {
	return s.sessions
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, closer := range s.closers {
		if err := closer(ctx); err != nil {
			s.logger.Error("Failed to close resource", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
