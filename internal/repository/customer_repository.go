package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"order-bot/internal/domain"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
)

// CustomerRepository defines the interface for registered customer access
type CustomerRepository interface {
	Upsert(ctx context.Context, customer *domain.Customer) error
	FindByChatID(ctx context.Context, chatID int64) (*domain.Customer, error)
}

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a Postgres backed CustomerRepository
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// Upsert creates the customer or overwrites name and phone for its chat
func (r *customerRepository) Upsert(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO bot_users (chat_id, name, phone, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chat_id) DO UPDATE
		SET name = EXCLUDED.name, phone = EXCLUDED.phone, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		customer.ChatID,
		customer.Name,
		customer.Phone,
		customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}

	return nil
}

// FindByChatID retrieves a customer by its conversation id
func (r *customerRepository) FindByChatID(ctx context.Context, chatID int64) (*domain.Customer, error) {
	query := `
		SELECT chat_id, name, phone, updated_at
		FROM bot_users
		WHERE chat_id = $1
	`

	customer := &domain.Customer{}
	err := r.db.QueryRowContext(ctx, query, chatID).Scan(
		&customer.ChatID,
		&customer.Name,
		&customer.Phone,
		&customer.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	return customer, nil
}
