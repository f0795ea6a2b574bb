package bot

import (
	"errors"
	"fmt"
	"strings"

	"order-bot/internal/domain"
)

// Callback payload wire format. Existing keyboards in customers' chats
// still carry these strings, so they must not change.
const (
	addPrefix      = "add_"
	categoryPrefix = "category_"
	payCashData    = "pay_cash"
	payCardData    = "pay_card"
	noneData       = "none"

	deliveredPrefix = "Yetkazildi_"
)

var ErrUnknownAction = errors.New("unknown action payload")

// Action is a decoded inline button press
type Action interface {
	// Payload encodes the action as callback data
	Payload() string
	isAction()
}

// AddToCart asks to put a product in the cart
type AddToCart struct {
	ProductID string
}

// SelectCategory opens a menu category
type SelectCategory struct {
	Slug string
}

// ChoosePayment picks the payment method at checkout
type ChoosePayment struct {
	Method domain.PaymentType
}

// OutOfStock is the disabled button shown under sold out products
type OutOfStock struct{}

func (a AddToCart) Payload() string      { return addPrefix + a.ProductID }
func (a SelectCategory) Payload() string { return categoryPrefix + a.Slug }
func (OutOfStock) Payload() string       { return noneData }

func (a ChoosePayment) Payload() string {
	if a.Method == domain.PaymentCard {
		return payCardData
	}
	return payCashData
}

func (AddToCart) isAction()      {}
func (SelectCategory) isAction() {}
func (ChoosePayment) isAction()  {}
func (OutOfStock) isAction()     {}

// DecodeAction parses callback data into an Action
func DecodeAction(data string) (Action, error) {
	switch data {
	case noneData:
		return OutOfStock{}, nil
	case payCashData:
		return ChoosePayment{Method: domain.PaymentCash}, nil
	case payCardData:
		return ChoosePayment{Method: domain.PaymentCard}, nil
	}

	if id, ok := strings.CutPrefix(data, addPrefix); ok && id != "" {
		return AddToCart{ProductID: id}, nil
	}
	if slug, ok := strings.CutPrefix(data, categoryPrefix); ok && slug != "" {
		return SelectCategory{Slug: slug}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, data)
}

// ParseDeliveryCommand extracts the order id from a "Yetkazildi_<id>" text
func ParseDeliveryCommand(text string) (string, bool) {
	id, ok := strings.CutPrefix(strings.TrimSpace(text), deliveredPrefix)
	if !ok {
		return "", false
	}
	id = strings.TrimSpace(id)
	return id, id != ""
}

// DeliveryCommand formats the text a courier sends to confirm an order
func DeliveryCommand(orderID string) string {
	return deliveredPrefix + orderID
}
