package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"order-bot/internal/cache"
	"order-bot/internal/config"
	"order-bot/internal/database"
	"order-bot/internal/domain"
	"order-bot/internal/logger"
	"order-bot/internal/messenger"
	"order-bot/internal/repository"
	"order-bot/internal/server"
	"order-bot/internal/telegram"
	"order-bot/internal/transport"

	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, stopJanitor context.CancelFunc, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	stopJanitor()

	// Close server resources
	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

// openStore connects the record store selected by STORE_DRIVER
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*repository.Repositories, func(context.Context) error, func(context.Context) error, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := database.OpenPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.RunMigrations(db, "migrations", log); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		log.Info("Database migrations completed successfully")
		return repository.NewPostgres(db), db.PingContext, closeSQL(db), nil
	default:
		client, db, err := database.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, nil, err
		}
		ping := func(ctx context.Context) error { return client.Ping(ctx, nil) }
		return repository.NewMongo(db), ping, client.Disconnect, nil
	}
}

func closeSQL(db *sql.DB) func(context.Context) error {
	return func(context.Context) error { return db.Close() }
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	log.Info("Starting order bot",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Driver),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize record store
	repos, storeHealth, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open record store", zap.Error(err))
	}
	log.Info("Store health check", zap.Any("health", database.Health(ctx, storeHealth)))

	deps := server.Dependencies{
		Repositories: repos,
		Senders:      make(map[domain.Persona]messenger.Sender),
		StoreHealth:  storeHealth,
		Closers:      []func(context.Context) error{closeStore},
	}

	// Initialize Redis
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		deps.Redis = rdb
		deps.Closers = append(deps.Closers, func(context.Context) error { return rdb.Close() })
	}

	// Initialize bots
	tokens := map[domain.Persona]string{
		domain.PersonaCustomer: cfg.Telegram.ClientToken,
		domain.PersonaAdmin:    cfg.Telegram.AdminToken,
		domain.PersonaDelivery: cfg.Telegram.DeliveryToken,
	}
	for _, persona := range domain.Personas {
		api, err := telegram.NewBot(tokens[persona], cfg.Telegram.APIEndpoint)
		if err != nil {
			log.Fatal("Failed to create bot", zap.String("persona", string(persona)), zap.Error(err))
		}
		botLog := log.Named(string(persona))
		deps.Senders[persona] = telegram.NewSender(api, cfg.Telegram.ImageDir, cfg.Telegram.RateLimit, botLog)

		if cfg.Telegram.AppURL != "" {
			url := cfg.Telegram.WebhookURL(transport.WebhookPath(persona))
			if err := telegram.SetWebhook(api, url, cfg.Telegram.WebhookSecret, botLog); err != nil {
				log.Fatal("Failed to register webhook", zap.String("persona", string(persona)), zap.Error(err))
			}
		}
	}

	// Create server
	srv, err := server.NewServer(cfg, log, deps)
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	go srv.RunJanitor(janitorCtx)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(srv, log, stopJanitor, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
