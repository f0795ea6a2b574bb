package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"order-bot/internal/domain"
	"order-bot/internal/messenger/messengertest"
	"order-bot/internal/repository"
	"order-bot/internal/service"
	"order-bot/internal/session"

	"go.uber.org/zap"
)

type fakeProductRepository struct {
	products []*domain.Product
	err      error
}

func (f *fakeProductRepository) FindByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	found := []*domain.Product{}
	for _, p := range f.products {
		if strings.EqualFold(p.Category, category) {
			copied := *p
			found = append(found, &copied)
		}
	}
	return found, nil
}

func (f *fakeProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.products {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (f *fakeProductRepository) ReplaceAll(ctx context.Context, products []*domain.Product) (int, error) {
	f.products = products
	return len(products), nil
}

type fakeCustomerRepository struct {
	mu        sync.Mutex
	customers map[int64]*domain.Customer
	err       error
}

func newFakeCustomerRepository() *fakeCustomerRepository {
	return &fakeCustomerRepository{customers: make(map[int64]*domain.Customer)}
}

func (f *fakeCustomerRepository) Upsert(ctx context.Context, customer *domain.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	copied := *customer
	f.customers[customer.ChatID] = &copied
	return nil
}

func (f *fakeCustomerRepository) FindByChatID(ctx context.Context, chatID int64) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[chatID]
	if !ok {
		return nil, repository.ErrCustomerNotFound
	}
	return c, nil
}

type fakeOrderRepository struct {
	mu        sync.Mutex
	orders    []*domain.Order
	createErr error
}

func (f *fakeOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	order.ID = fmt.Sprintf("%024x", len(f.orders)+1)
	copied := *order
	f.orders = append(f.orders, &copied)
	return nil
}

func (f *fakeOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			copied := *o
			return &copied, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (f *fakeOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			o.Status = status
			return nil
		}
	}
	return repository.ErrOrderNotFound
}

func (f *fakeOrderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	found := []*domain.Order{}
	for _, o := range f.orders {
		if o.Status == status {
			copied := *o
			found = append(found, &copied)
		}
	}
	return found, nil
}

const adminChatID int64 = -1001

type harness struct {
	sessions  *session.Store
	products  *fakeProductRepository
	customers *fakeCustomerRepository
	orders    *fakeOrderRepository

	customerOut *messengertest.Recorder
	adminOut    *messengertest.Recorder
	deliveryOut *messengertest.Recorder

	customer *CustomerBot
	admin    *AdminBot
	delivery *DeliveryBot
	router   *Router
}

func newHarness(products ...*domain.Product) *harness {
	logger := zap.NewNop()
	h := &harness{
		sessions:    session.NewStore(time.Hour, logger),
		products:    &fakeProductRepository{products: products},
		customers:   newFakeCustomerRepository(),
		orders:      &fakeOrderRepository{},
		customerOut: messengertest.NewRecorder(),
		adminOut:    messengertest.NewRecorder(),
		deliveryOut: messengertest.NewRecorder(),
	}

	orderService := service.NewOrderService(h.orders, h.adminOut, h.customerOut, adminChatID, logger)
	h.customer = NewCustomerBot(h.sessions, h.products, h.customers, orderService, h.customerOut, logger)
	h.admin = NewAdminBot(orderService, h.adminOut, adminChatID, logger)
	h.delivery = NewDeliveryBot(orderService, h.deliveryOut, logger)
	h.router = NewRouter(h.customer, h.admin, h.delivery)
	return h
}

func (h *harness) session(chatID int64) *session.Session {
	return h.sessions.Get(session.Key{Persona: domain.PersonaCustomer, ChatID: chatID})
}

// register walks chatID through start, name and contact
func (h *harness) register(chatID int64) {
	ctx := context.Background()
	_ = h.customer.HandleEvent(ctx, StartEvent(chatID))
	_ = h.customer.HandleEvent(ctx, TextEvent(chatID, "Alice"))
	_ = h.customer.HandleEvent(ctx, ContactEvent(chatID, "+998901234567"))
	h.customerOut.Reset()
}
