package notify

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"restou/internal/config"
)

// Notifier delivers short operational messages about scrape runs.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Nop discards every message.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts messages to a single chat.
type Telegram struct {
	api    sender
	chatID int64
}

// NewTelegram authorizes the bot token against the Telegram API.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Printf("Authorized on account %s", bot.Self.UserName)
	return &Telegram{api: bot, chatID: chatID}, nil
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// New returns a Telegram notifier when a bot token and chat are configured
// and a Nop otherwise.
func New(cfg *config.Config) Notifier {
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		return Nop{}
	}
	t, err := NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		log.Printf("Warning: telegram notifications disabled: %v", err)
		return Nop{}
	}
	return t
}
