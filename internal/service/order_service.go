package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"order-bot/internal/domain"
	"order-bot/internal/messenger"
	"order-bot/internal/repository"
	"order-bot/internal/session"

	"go.uber.org/zap"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
)

// OrderService defines the order lifecycle: checkout, listing and delivery
type OrderService interface {
	Finalize(ctx context.Context, sess *session.Session) (*domain.Order, error)
	MarkDelivered(ctx context.Context, orderID string) (*domain.Order, error)
	PendingOrders(ctx context.Context) ([]*domain.Order, error)
}

type orderService struct {
	orders      repository.OrderRepository
	admin       *messenger.Notifier
	customer    *messenger.Notifier
	adminChatID int64
	now         func() time.Time
	logger      *zap.Logger
}

// NewOrderService creates a new instance of OrderService. New orders are
// reported to adminChatID through admin; delivery confirmations go back to
// the ordering chat through customer.
func NewOrderService(
	orders repository.OrderRepository,
	admin messenger.Sender,
	customer messenger.Sender,
	adminChatID int64,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orders:      orders,
		admin:       messenger.NewNotifier(admin, "admin", logger),
		customer:    messenger.NewNotifier(customer, "client", logger),
		adminChatID: adminChatID,
		now:         time.Now,
		logger:      logger,
	}
}

// Finalize persists the session cart as a pending order, reports it to the
// admin chat and resets the session for the next order. When persisting
// fails the session is left untouched so the customer can retry.
func (s *orderService) Finalize(ctx context.Context, sess *session.Session) (*domain.Order, error) {
	if len(sess.Cart) == 0 {
		return nil, ErrEmptyCart
	}

	paymentType := sess.PaymentType
	if paymentType == "" {
		paymentType = domain.PaymentCash
	}

	items := make([]domain.OrderItem, 0, len(sess.Cart))
	for _, line := range sess.Cart {
		items = append(items, domain.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
		})
	}

	order := &domain.Order{
		CustomerName:  sess.Name,
		CustomerPhone: sess.Phone,
		ChatID:        sess.Key.ChatID,
		Items:         items,
		PaymentType:   paymentType,
		ProofImage:    sess.ProofImage,
		ProofNote:     sess.ProofNote,
		Status:        domain.OrderStatusPending,
		CreatedAt:     s.now(),
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.Int64("chat_id", order.ChatID),
		zap.Int("items", len(order.Items)),
		zap.Int64("total", order.Total()),
		zap.String("payment_type", string(order.PaymentType)),
	)

	s.admin.Notify(ctx, OrderMessage(s.adminChatID, NewOrderHeader, order))

	sess.ClearCheckout()
	sess.Step = session.StepChoosingCategory

	return order, nil
}

// MarkDelivered moves an order to delivered and tells the customer. Marking
// an already delivered order again keeps it delivered and re-sends the
// confirmation.
func (s *orderService) MarkDelivered(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, repository.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	now := s.now()
	if err := s.orders.UpdateStatus(ctx, order.ID, domain.OrderStatusDelivered, now); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, repository.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to mark order delivered: %w", err)
	}

	order.Status = domain.OrderStatusDelivered
	if order.DeliveredAt == nil {
		order.DeliveredAt = &now
	}

	s.logger.Info("Order delivered",
		zap.String("order_id", order.ID),
		zap.Int64("chat_id", order.ChatID),
	)

	s.customer.Notify(ctx, messenger.Text(order.ChatID, DeliveredNotice))

	return order, nil
}

// PendingOrders lists orders waiting for delivery, oldest first
func (s *orderService) PendingOrders(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.orders.ListByStatus(ctx, domain.OrderStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending orders: %w", err)
	}
	return orders, nil
}
