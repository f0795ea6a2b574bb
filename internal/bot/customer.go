package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"order-bot/internal/domain"
	"order-bot/internal/messenger"
	"order-bot/internal/repository"
	"order-bot/internal/service"
	"order-bot/internal/session"

	"go.uber.org/zap"
)

// stepHandler reacts to an event in one dialogue step. Events a step does
// not expect are ignored without a reply.
type stepHandler func(ctx context.Context, sess *session.Session, ev Event) error

// CustomerBot runs the customer dialogue: registration, browsing, cart and
// checkout
type CustomerBot struct {
	sessions  *session.Store
	products  repository.ProductRepository
	customers repository.CustomerRepository
	orders    service.OrderService
	sender    messenger.Sender
	confirm   *messenger.Notifier
	logger    *zap.Logger
	now       func() time.Time

	steps map[session.Step]stepHandler
}

// NewCustomerBot creates the customer persona
func NewCustomerBot(
	sessions *session.Store,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	orders service.OrderService,
	sender messenger.Sender,
	logger *zap.Logger,
) *CustomerBot {
	b := &CustomerBot{
		sessions:  sessions,
		products:  products,
		customers: customers,
		orders:    orders,
		sender:    sender,
		confirm:   messenger.NewNotifier(sender, "client", logger),
		logger:    logger,
		now:       time.Now,
	}

	b.steps = map[session.Step]stepHandler{
		session.StepStart:                 b.onStart,
		session.StepAwaitingName:          b.onName,
		session.StepAwaitingPhone:         b.onPhone,
		session.StepChoosingCategory:      b.onMenu,
		session.StepBrowsingProducts:      b.onMenu,
		session.StepAwaitingPaymentMethod: b.onPaymentMethod,
		session.StepAwaitingPaymentProof:  b.onPaymentProof,
	}

	return b
}

// HandleEvent applies ev to the conversation's session. Events of one chat
// are handled one at a time.
func (b *CustomerBot) HandleEvent(ctx context.Context, ev Event) error {
	sess, release := b.sessions.Acquire(session.Key{Persona: domain.PersonaCustomer, ChatID: ev.ChatID})
	defer release()

	before := sess.Step
	err := b.handle(ctx, sess, ev)

	if sess.Step != before {
		b.logger.Debug("Customer step changed",
			zap.Int64("chat_id", ev.ChatID),
			zap.Stringer("event", ev.Kind),
			zap.Stringer("from", before),
			zap.Stringer("to", sess.Step),
		)
	}

	return err
}

func (b *CustomerBot) handle(ctx context.Context, sess *session.Session, ev Event) error {
	if ev.Kind == EventStart {
		return b.restart(ctx, sess)
	}
	if ev.Kind == EventAction {
		if _, ok := ev.Action.(OutOfStock); ok {
			return b.sender.Answer(ctx, ev.CallbackID, textUnavailable)
		}
	}

	handler, ok := b.steps[sess.Step]
	if !ok {
		return nil
	}
	return handler(ctx, sess, ev)
}

func (b *CustomerBot) restart(ctx context.Context, sess *session.Session) error {
	if err := b.sender.Send(ctx, messenger.Message{
		ChatID:   sess.Key.ChatID,
		Text:     textGreeting,
		Keyboard: messenger.RemoveKeyboard{},
	}); err != nil {
		return err
	}

	sess.ClearCheckout()
	sess.Category = ""
	sess.Step = session.StepAwaitingName
	return nil
}

func (b *CustomerBot) onStart(ctx context.Context, sess *session.Session, ev Event) error {
	if ev.Kind != EventText {
		return nil
	}
	return b.restart(ctx, sess)
}

func (b *CustomerBot) onName(ctx context.Context, sess *session.Session, ev Event) error {
	name := strings.TrimSpace(ev.Text)
	if ev.Kind != EventText || name == "" {
		return nil
	}

	if err := b.sender.Send(ctx, messenger.Message{
		ChatID:   sess.Key.ChatID,
		Text:     textAskPhone,
		Keyboard: contactKeyboard(),
	}); err != nil {
		return err
	}

	sess.Name = name
	sess.Step = session.StepAwaitingPhone
	return nil
}

func (b *CustomerBot) onPhone(ctx context.Context, sess *session.Session, ev Event) error {
	if ev.Kind != EventContact || ev.Phone == "" {
		return nil
	}

	customer := &domain.Customer{
		ChatID:    sess.Key.ChatID,
		Name:      sess.Name,
		Phone:     ev.Phone,
		UpdatedAt: b.now(),
	}
	if err := b.customers.Upsert(ctx, customer); err != nil {
		return fmt.Errorf("failed to register customer: %w", err)
	}
	sess.Phone = ev.Phone

	b.logger.Info("Customer registered", zap.Int64("chat_id", customer.ChatID))

	if err := b.sender.Send(ctx, messenger.Text(sess.Key.ChatID, fmt.Sprintf(textRegistered, sess.Name))); err != nil {
		return err
	}
	return b.showMenu(ctx, sess)
}

func (b *CustomerBot) showMenu(ctx context.Context, sess *session.Session) error {
	if err := b.sender.Send(ctx, messenger.Message{
		ChatID:   sess.Key.ChatID,
		Text:     textChooseCategory,
		Keyboard: categoryKeyboard(),
	}); err != nil {
		return err
	}

	sess.Step = session.StepChoosingCategory
	return nil
}

// onMenu serves the category menu and the product list. Checkout steps fall
// back to it, so a customer can keep shopping after opening the cart.
func (b *CustomerBot) onMenu(ctx context.Context, sess *session.Session, ev Event) error {
	switch ev.Kind {
	case EventText:
		if isCartLabel(ev.Text) {
			return b.showCart(ctx, sess)
		}
		if category, ok := domain.CategoryByLabel(ev.Text); ok {
			return b.browse(ctx, sess, category)
		}
	case EventAction:
		switch action := ev.Action.(type) {
		case AddToCart:
			return b.addToCart(ctx, sess, ev.CallbackID, action.ProductID)
		case SelectCategory:
			if category, ok := domain.CategoryBySlug(action.Slug); ok {
				return b.browse(ctx, sess, category)
			}
		case ChoosePayment:
			if len(sess.Cart) == 0 {
				return b.sender.Send(ctx, messenger.Text(sess.Key.ChatID, textCartEmpty))
			}
			return b.pay(ctx, sess, action.Method)
		}
	}
	return nil
}

func isCartLabel(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), CartLabel)
}

// isMenuText reports whether text is a menu button rather than free input
func isMenuText(text string) bool {
	if isCartLabel(text) {
		return true
	}
	_, ok := domain.CategoryByLabel(text)
	return ok
}

func (b *CustomerBot) browse(ctx context.Context, sess *session.Session, category domain.Category) error {
	products, err := b.products.FindByCategory(ctx, category.Label)
	if err != nil {
		return fmt.Errorf("failed to load category %q: %w", category.Label, err)
	}

	if len(products) == 0 {
		return b.sender.Send(ctx, messenger.Text(sess.Key.ChatID, textNoProducts))
	}

	for _, p := range products {
		if err := b.sender.Send(ctx, productCard(sess.Key.ChatID, p)); err != nil {
			return err
		}
	}

	sess.Category = category.Label
	sess.Step = session.StepBrowsingProducts
	return nil
}

func (b *CustomerBot) addToCart(ctx context.Context, sess *session.Session, callbackID, productID string) error {
	product, err := b.products.FindByID(ctx, productID)
	if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
		return fmt.Errorf("failed to load product: %w", err)
	}

	if product == nil || !product.InStock() {
		return b.sender.Answer(ctx, callbackID, textUnavailable)
	}

	sess.AddProduct(product)
	sess.Step = session.StepBrowsingProducts

	return b.sender.Answer(ctx, callbackID, textAdded)
}

func (b *CustomerBot) showCart(ctx context.Context, sess *session.Session) error {
	if len(sess.Cart) == 0 {
		return b.sender.Send(ctx, messenger.Text(sess.Key.ChatID, textCartEmpty))
	}

	if err := b.sender.Send(ctx, messenger.Message{
		ChatID:   sess.Key.ChatID,
		Text:     cartSummary(sess),
		Keyboard: paymentKeyboard(),
	}); err != nil {
		return err
	}

	sess.Step = session.StepAwaitingPaymentMethod
	return nil
}

func (b *CustomerBot) onPaymentMethod(ctx context.Context, sess *session.Session, ev Event) error {
	switch ev.Kind {
	case EventAction:
		if action, ok := ev.Action.(ChoosePayment); ok {
			return b.pay(ctx, sess, action.Method)
		}
	case EventText:
		switch strings.TrimSpace(ev.Text) {
		case string(domain.PaymentCash):
			return b.pay(ctx, sess, domain.PaymentCash)
		case string(domain.PaymentCard):
			return b.pay(ctx, sess, domain.PaymentCard)
		}
	}
	return b.onMenu(ctx, sess, ev)
}

// pay finalizes a cash order or asks for the card receipt
func (b *CustomerBot) pay(ctx context.Context, sess *session.Session, method domain.PaymentType) error {
	if method == domain.PaymentCash {
		sess.PaymentType = domain.PaymentCash
		return b.checkout(ctx, sess, textCashAccepted)
	}

	if err := b.sender.Send(ctx, messenger.Text(sess.Key.ChatID, textAskReceipt)); err != nil {
		return err
	}

	sess.PaymentType = domain.PaymentCard
	sess.Step = session.StepAwaitingPaymentProof
	return nil
}

// onPaymentProof takes a receipt photo or a text reference. Buttons and menu
// labels still work as they do while browsing.
func (b *CustomerBot) onPaymentProof(ctx context.Context, sess *session.Session, ev Event) error {
	switch ev.Kind {
	case EventPhoto:
		if ev.Photo == "" {
			return nil
		}
		sess.ProofImage = ev.Photo
		sess.ProofNote = strings.TrimSpace(ev.Text)
	case EventText:
		if isMenuText(ev.Text) {
			return b.onMenu(ctx, sess, ev)
		}
		note := strings.TrimSpace(ev.Text)
		if note == "" {
			return nil
		}
		sess.ProofNote = note
	case EventAction:
		return b.onMenu(ctx, sess, ev)
	default:
		return nil
	}

	sess.PaymentType = domain.PaymentCard
	return b.checkout(ctx, sess, textCardAccepted)
}

// checkout finalizes the order and confirms it to the customer. A failed
// finalize leaves the session as it was, minus the proof just recorded, so
// the customer can resend it. Once the order is stored a lost confirmation
// is only logged.
func (b *CustomerBot) checkout(ctx context.Context, sess *session.Session, confirmation string) error {
	if _, err := b.orders.Finalize(ctx, sess); err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			return b.sender.Send(ctx, messenger.Text(sess.Key.ChatID, textCartEmpty))
		}
		sess.ProofImage = ""
		sess.ProofNote = ""
		return err
	}

	b.confirm.Notify(ctx, messenger.Message{
		ChatID:   sess.Key.ChatID,
		Text:     confirmation,
		Keyboard: categoryKeyboard(),
	})
	return nil
}
