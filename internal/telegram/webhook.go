package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// webhookClient is the part of *tgbotapi.BotAPI used to set webhooks
type webhookClient interface {
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// SetWebhook points the bot at url. A non-empty secret is echoed back by
// Telegram in the X-Telegram-Bot-Api-Secret-Token header.
func SetWebhook(client webhookClient, url, secret string, logger *zap.Logger) error {
	params := tgbotapi.Params{}
	params["url"] = url
	params.AddNonEmpty("secret_token", secret)

	resp, err := client.MakeRequest("setWebhook", params)
	if err != nil {
		return fmt.Errorf("failed to set webhook %s: %w", url, err)
	}
	if !resp.Ok {
		return fmt.Errorf("failed to set webhook %s: %s", url, resp.Description)
	}

	logger.Info("Webhook registered", zap.String("url", url))
	return nil
}
