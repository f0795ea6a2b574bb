package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"order-bot/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, at time.Time) error
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a Postgres backed OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, client_name, client_phone, chat_id, cart, payment_type,
		       check_file_id, card_reference, status, created_at, delivered_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order       domain.Order
		cart        []byte
		deliveredAt sql.NullTime
	)

	err := row.Scan(
		&order.ID,
		&order.CustomerName,
		&order.CustomerPhone,
		&order.ChatID,
		&cart,
		&order.PaymentType,
		&order.ProofImage,
		&order.ProofNote,
		&order.Status,
		&order.CreatedAt,
		&deliveredAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(cart, &order.Items); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time
		order.DeliveredAt = &t
	}

	return &order, nil
}

// Create inserts a new order and assigns its ID
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	cart, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	id := uuid.New()
	query := `
		INSERT INTO bot_orders (id, client_name, client_phone, chat_id, cart, payment_type,
		                        check_file_id, card_reference, status, created_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9, $10)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		id,
		order.CustomerName,
		order.CustomerPhone,
		order.ChatID,
		string(cart),
		order.PaymentType,
		order.ProofImage,
		order.ProofNote,
		order.Status,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	order.ID = id.String()
	return nil
}

// FindByID retrieves an order by ID. Malformed ids are reported as not found.
func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	query := `SELECT ` + orderColumns + ` FROM bot_orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	return order, nil
}

// UpdateStatus sets the order status. The first delivery time is kept.
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, at time.Time) error {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return ErrOrderNotFound
	}

	query := `
		UPDATE bot_orders
		SET status = $2,
		    delivered_at = CASE WHEN $2::text = 'delivered' THEN COALESCE(delivered_at, $3) ELSE delivered_at END
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, orderID, status, at)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// ListByStatus returns orders with the given status, oldest first
func (r *orderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM bot_orders WHERE status = $1 ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}
