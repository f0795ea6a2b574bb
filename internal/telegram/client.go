// Package telegram adapts the Telegram Bot API to the messenger and bot
// packages: outbound messages, inbound update decoding and webhook setup.
package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Client is the part of *tgbotapi.BotAPI the sender uses
type Client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// NewBot connects to the Bot API with token. An empty endpoint selects the
// public Telegram API; endpoint otherwise follows tgbotapi.APIEndpoint's
// format.
func NewBot(token, endpoint string) (*tgbotapi.BotAPI, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect bot: %w", err)
	}
	return api, nil
}
