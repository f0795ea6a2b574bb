package session

import (
	"fmt"
	"sync"
	"time"

	"order-bot/internal/domain"
)

// Key identifies a conversation on one bot. Chat ids are only unique per
// bot, so the persona is part of the key.
type Key struct {
	Persona domain.Persona
	ChatID  int64
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%d", k.Persona, k.ChatID)
}

// Step is the position of a conversation in the customer dialogue
type Step int

const (
	StepStart Step = iota
	StepAwaitingName
	StepAwaitingPhone
	StepChoosingCategory
	StepBrowsingProducts
	StepAwaitingPaymentMethod
	StepAwaitingPaymentProof
)

var stepNames = map[Step]string{
	StepStart:                 "start",
	StepAwaitingName:          "awaiting_name",
	StepAwaitingPhone:         "awaiting_phone",
	StepChoosingCategory:      "choosing_category",
	StepBrowsingProducts:      "browsing_products",
	StepAwaitingPaymentMethod: "awaiting_payment_method",
	StepAwaitingPaymentProof:  "awaiting_payment_proof",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// CartLine is a product snapshot taken when it was added to the cart
type CartLine struct {
	ProductID string
	Name      string
	Price     int64
}

// Session is the scratch state of one conversation. Fields must only be
// touched while the session is held through Store.Acquire.
type Session struct {
	Key         Key
	Step        Step
	Name        string
	Phone       string
	Category    string
	Cart        []CartLine
	PaymentType domain.PaymentType
	ProofImage  string
	ProofNote   string

	mu       sync.Mutex
	refs     int
	lastSeen time.Time
}

func newSession(key Key, now time.Time) *Session {
	return &Session{
		Key:      key,
		Step:     StepStart,
		Cart:     []CartLine{},
		lastSeen: now,
	}
}

// AddProduct appends a snapshot of p to the cart
func (s *Session) AddProduct(p *domain.Product) {
	s.Cart = append(s.Cart, CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
	})
}

// CartTotal sums the prices of all cart lines
func (s *Session) CartTotal() int64 {
	var total int64
	for _, line := range s.Cart {
		total += line.Price
	}
	return total
}

// ClearCheckout empties the cart and forgets payment details. Profile
// fields are kept so a returning customer does not register again.
func (s *Session) ClearCheckout() {
	s.Cart = []CartLine{}
	s.PaymentType = ""
	s.ProofImage = ""
	s.ProofNote = ""
}
