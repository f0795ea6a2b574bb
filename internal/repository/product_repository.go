package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"order-bot/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for catalog data access
type ProductRepository interface {
	FindByCategory(ctx context.Context, category string) ([]*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	ReplaceAll(ctx context.Context, products []*domain.Product) (int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a Postgres backed ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// FindByCategory returns products whose category matches case-insensitively
func (r *productRepository) FindByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	query := `
		SELECT id, name, category, price, stock, image, image_out_of_stock
		FROM bot_products
		WHERE LOWER(category) = LOWER($1)
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to find products by category: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Category,
			&product.Price,
			&product.Stock,
			&product.Image,
			&product.ImageOutOfStock,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT id, name, category, price, stock, image, image_out_of_stock
		FROM bot_products
		WHERE id = $1
	`

	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&product.Price,
		&product.Stock,
		&product.Image,
		&product.ImageOutOfStock,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// ReplaceAll swaps the whole catalog inside one transaction. Products
// without an ID get a generated one.
func (r *productRepository) ReplaceAll(ctx context.Context, products []*domain.Product) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bot_products`); err != nil {
		return 0, fmt.Errorf("failed to clear products: %w", err)
	}

	query := `
		INSERT INTO bot_products (id, name, category, price, stock, image, image_out_of_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, product := range products {
		if product.ID == "" {
			product.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(
			ctx,
			query,
			product.ID,
			product.Name,
			product.Category,
			product.Price,
			product.Stock,
			product.Image,
			product.ImageOutOfStock,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert product %q: %w", product.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit products: %w", err)
	}

	return len(products), nil
}
