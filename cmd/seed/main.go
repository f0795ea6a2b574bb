// Command seed replaces the product catalog with the contents of a JSON file.
//
//	go run ./cmd/seed [products.json]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"order-bot/internal/config"
	"order-bot/internal/database"
	"order-bot/internal/domain"
	"order-bot/internal/logger"
	"order-bot/internal/repository"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const defaultCatalogFile = "products.json"

func readCatalog(path string) ([]*domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var products []*domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	for i, p := range products {
		if p.Name == "" || p.Category == "" {
			return nil, fmt.Errorf("product %d: name and category are required", i)
		}
	}
	return products, nil
}

func seed(ctx context.Context, cfg *config.Config, products []*domain.Product, log *zap.Logger) (int, error) {
	var repo repository.ProductRepository

	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := database.OpenPostgres(ctx, cfg.Database)
		if err != nil {
			return 0, err
		}
		defer db.Close()
		if err := database.RunMigrations(db, "migrations", log); err != nil {
			return 0, err
		}
		repo = repository.NewProductRepository(db)
	default:
		client, db, err := database.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			return 0, err
		}
		defer client.Disconnect(context.Background())
		repo = repository.NewMongoProductRepository(db)
	}

	return repo.ReplaceAll(ctx, products)
}

func main() {
	log := logger.NewWithDefaults()
	defer log.Sync()

	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file loaded", zap.Error(err))
	}
	cfg := config.Load()

	path := defaultCatalogFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	products, err := readCatalog(path)
	if err != nil {
		log.Fatal("Failed to load catalog", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := seed(ctx, cfg, products, log)
	if err != nil {
		log.Fatal("Failed to seed catalog", zap.String("store", cfg.Store.Driver), zap.Error(err))
	}
	log.Info("Catalog seeded", zap.Int("products", n), zap.String("store", cfg.Store.Driver))
}
