package service

import (
	"fmt"
	"strings"

	"order-bot/internal/domain"
	"order-bot/internal/messenger"
)

const (
	NewOrderHeader     = "✅ Yangi zakaz!"
	PendingOrderHeader = "📦 Zakaz"
	DeliveredNotice    = "Zakazingiz yetkazildi ✅"
)

// FormatPrice renders an amount in so'm
func FormatPrice(amount int64) string {
	return fmt.Sprintf("%d so'm", amount)
}

// OrderSummary renders an order for the admin chat
func OrderSummary(header string, order *domain.Order) string {
	var b strings.Builder

	b.WriteString(header)
	b.WriteString("\n")
	fmt.Fprintf(&b, "ID: %s\n", order.ID)
	fmt.Fprintf(&b, "Mijoz: %s\n", order.CustomerName)
	fmt.Fprintf(&b, "Telefon: %s\n", order.CustomerPhone)
	b.WriteString("Mahsulotlar:\n")
	for i, item := range order.Items {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, item.Name, FormatPrice(item.Price))
	}
	fmt.Fprintf(&b, "Jami: %s\n", FormatPrice(order.Total()))
	fmt.Fprintf(&b, "To‘lov: %s", order.PaymentType)
	if order.ProofNote != "" {
		fmt.Fprintf(&b, "\nKarta ma'lumoti: %s", order.ProofNote)
	}

	return b.String()
}

// OrderMessage addresses an order summary to chatID, attaching the payment
// receipt when the customer sent one
func OrderMessage(chatID int64, header string, order *domain.Order) messenger.Message {
	summary := OrderSummary(header, order)
	if order.ProofImage != "" {
		return messenger.Photo(chatID, order.ProofImage, summary)
	}
	return messenger.Text(chatID, summary)
}
