package telegram

import (
	"order-bot/internal/bot"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Decode reduces an update to a bot event. Updates the bots do not act on,
// including buttons with unknown payloads, report false.
func Decode(update tgbotapi.Update) (bot.Event, bool) {
	if cq := update.CallbackQuery; cq != nil {
		return decodeCallback(cq)
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return bot.Event{}, false
	}
	chatID := msg.Chat.ID

	switch {
	case msg.IsCommand() && msg.Command() == "start":
		return bot.StartEvent(chatID), true
	case msg.Contact != nil && msg.Contact.PhoneNumber != "":
		return bot.ContactEvent(chatID, msg.Contact.PhoneNumber), true
	case len(msg.Photo) > 0:
		ev := bot.PhotoEvent(chatID, largestPhoto(msg.Photo).FileID)
		ev.Text = msg.Caption
		return ev, true
	case msg.Text != "":
		return bot.TextEvent(chatID, msg.Text), true
	}
	return bot.Event{}, false
}

func decodeCallback(cq *tgbotapi.CallbackQuery) (bot.Event, bool) {
	var chatID int64
	switch {
	case cq.Message != nil && cq.Message.Chat != nil:
		chatID = cq.Message.Chat.ID
	case cq.From != nil:
		chatID = cq.From.ID
	default:
		return bot.Event{}, false
	}

	action, err := bot.DecodeAction(cq.Data)
	if err != nil {
		return bot.Event{}, false
	}
	return bot.ActionEvent(chatID, cq.ID, action), true
}

func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, p := range sizes[1:] {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}
	return best
}
