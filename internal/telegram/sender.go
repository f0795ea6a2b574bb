package telegram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"order-bot/internal/messenger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Sender delivers messenger messages through one bot
type Sender struct {
	client   Client
	limiter  *rate.Limiter
	imageDir string
	logger   *zap.Logger
}

// NewSender creates a Sender that sends at most perSecond requests per
// second (unlimited when perSecond <= 0). Photo references naming a file
// under imageDir are uploaded from disk.
func NewSender(client Client, imageDir string, perSecond float64, logger *zap.Logger) *Sender {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}

	return &Sender{
		client:   client,
		limiter:  rate.NewLimiter(limit, 1),
		imageDir: imageDir,
		logger:   logger,
	}
}

func (s *Sender) Send(ctx context.Context, msg messenger.Message) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	var chattable tgbotapi.Chattable
	if msg.IsPhoto() {
		photo := tgbotapi.NewPhoto(msg.ChatID, s.photoFile(msg.Photo))
		photo.Caption = msg.Text
		photo.ReplyMarkup = replyMarkup(msg.Keyboard)
		chattable = photo
	} else {
		text := tgbotapi.NewMessage(msg.ChatID, msg.Text)
		text.ReplyMarkup = replyMarkup(msg.Keyboard)
		chattable = text
	}

	if _, err := s.client.Send(chattable); err != nil {
		s.logger.Debug("Telegram send failed",
			zap.Int64("chat_id", msg.ChatID),
			zap.Bool("photo", msg.IsPhoto()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send message to chat %d: %w", msg.ChatID, err)
	}
	return nil
}

func (s *Sender) Answer(ctx context.Context, callbackID, text string) error {
	if callbackID == "" {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	if _, err := s.client.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

// photoFile resolves an image reference: URLs are fetched by Telegram,
// files under the image directory are uploaded, anything else is treated
// as a Telegram file id
func (s *Sender) photoFile(ref string) tgbotapi.RequestFileData {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return tgbotapi.FileURL(ref)
	}

	if s.imageDir != "" {
		path := filepath.Join(s.imageDir, filepath.Base(ref))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return tgbotapi.FilePath(path)
		}
	}

	return tgbotapi.FileID(ref)
}

func replyMarkup(kb messenger.Keyboard) interface{} {
	switch k := kb.(type) {
	case messenger.ReplyKeyboard:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(k.Rows))
		for _, row := range k.Rows {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, b := range row {
				if b.RequestContact {
					buttons = append(buttons, tgbotapi.NewKeyboardButtonContact(b.Text))
				} else {
					buttons = append(buttons, tgbotapi.NewKeyboardButton(b.Text))
				}
			}
			rows = append(rows, buttons)
		}
		markup := tgbotapi.NewReplyKeyboard(rows...)
		markup.OneTimeKeyboard = k.OneTime
		markup.ResizeKeyboard = k.Resize
		return markup

	case messenger.InlineKeyboard:
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(k.Rows))
		for _, row := range k.Rows {
			buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
			rows = append(rows, buttons)
		}
		return tgbotapi.NewInlineKeyboardMarkup(rows...)

	case messenger.RemoveKeyboard:
		return tgbotapi.NewRemoveKeyboard(false)
	}
	return nil
}
