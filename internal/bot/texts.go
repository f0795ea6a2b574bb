package bot

import (
	"fmt"
	"strings"

	"order-bot/internal/domain"
	"order-bot/internal/messenger"
	"order-bot/internal/service"
	"order-bot/internal/session"
)

const (
	textGreeting       = "Salom! Bot ishlayapti ✅\nIsmingizni kiriting:"
	textAskPhone       = "Telefon raqamingizni yuboring:"
	textShareContact   = "Telefonni yuborish"
	textRegistered     = "Ro'yxatdan o'tdingiz!\nAssalomu alaykum, %s"
	textChooseCategory = "Kategoriya tanlang:"
	textNoProducts     = "Ushbu kategoriyada mahsulot yo'q."
	textAddToCart      = "Savatga qo'shish"
	textSoldOut        = "Sotuvda yo'q"
	textAdded          = "Savatga qo'shildi ✅"
	textUnavailable    = "Mahsulot qolmagan ❌"
	textCartEmpty      = "Savatchangiz bo'sh 🛒"
	textChoosePayment  = "To'lov turini tanlang:"
	textCashAccepted   = "Buyurtmangiz qabul qilindi ✅ Naqd to‘lov bilan. Adminga yuborildi."
	textAskReceipt     = "Iltimos, to‘lov qilganingizdan so‘ng chek rasmini yuboring:"
	textCardAccepted   = "Buyurtmangiz qabul qilindi ✅ Karta to‘lov bilan. Adminga yuborildi."

	// CartLabel is the menu button that opens the cart
	CartLabel = "Savatcha"

	// OrdersCommand is the admin text that lists pending orders
	OrdersCommand = "Zakazlar"

	textNoPendingOrders   = "Hozir zakaz yo'q."
	textAdminWelcome      = "Kutilayotgan zakazlarni ko'rish uchun \"Zakazlar\" tugmasini bosing."
	textDeliveryWelcome   = "Yetkazilgan zakazni belgilash uchun yuboring: Yetkazildi_<zakaz ID>"
	textDeliveryConfirmed = "Zakaz #%s yetkazildi."
	textOrderNotFound     = "Zakaz #%s topilmadi."
)

func categoryKeyboard() messenger.ReplyKeyboard {
	rows := [][]messenger.ReplyButton{}
	row := []messenger.ReplyButton{}
	for _, c := range domain.Categories {
		row = append(row, messenger.ReplyButton{Text: c.Label})
		if len(row) == 2 {
			rows = append(rows, row)
			row = []messenger.ReplyButton{}
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []messenger.ReplyButton{{Text: CartLabel}})

	return messenger.ReplyKeyboard{Rows: rows, Resize: true}
}

func contactKeyboard() messenger.ReplyKeyboard {
	return messenger.ReplyKeyboard{
		Rows:    [][]messenger.ReplyButton{{{Text: textShareContact, RequestContact: true}}},
		OneTime: true,
		Resize:  true,
	}
}

func paymentKeyboard() messenger.InlineKeyboard {
	return messenger.InlineKeyboard{Rows: [][]messenger.InlineButton{{
		{Text: "💵 " + string(domain.PaymentCash), Data: ChoosePayment{Method: domain.PaymentCash}.Payload()},
		{Text: "💳 " + string(domain.PaymentCard), Data: ChoosePayment{Method: domain.PaymentCard}.Payload()},
	}}}
}

func productCard(chatID int64, p *domain.Product) messenger.Message {
	msg := messenger.Photo(chatID, p.DisplayImage(), productCaption(p))

	button := messenger.InlineButton{Text: textSoldOut, Data: OutOfStock{}.Payload()}
	if p.InStock() {
		button = messenger.InlineButton{Text: textAddToCart, Data: AddToCart{ProductID: p.ID}.Payload()}
	}
	msg.Keyboard = messenger.InlineKeyboard{Rows: [][]messenger.InlineButton{{button}}}

	return msg
}

func productCaption(p *domain.Product) string {
	return fmt.Sprintf("%s\nNarxi: %s", p.Name, service.FormatPrice(p.Price))
}

func cartSummary(sess *session.Session) string {
	var b strings.Builder
	b.WriteString("🛒 " + CartLabel + ":\n")
	for i, line := range sess.Cart {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, line.Name, service.FormatPrice(line.Price))
	}
	fmt.Fprintf(&b, "Jami: %s\n\n", service.FormatPrice(sess.CartTotal()))
	b.WriteString(textChoosePayment)
	return b.String()
}
