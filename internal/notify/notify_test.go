package notify

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restou/internal/config"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestTelegramNotify(t *testing.T) {
	fake := &fakeSender{}
	n := &Telegram{api: fake, chatID: 42}

	require.NoError(t, n.Notify(context.Background(), "scrape ok"))
	require.Len(t, fake.sent, 1)
	assert.Equal(t, int64(42), fake.sent[0].ChatID)
	assert.Equal(t, "scrape ok", fake.sent[0].Text)

	fake.err = errors.New("boom")
	assert.Error(t, n.Notify(context.Background(), "again"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Notify(ctx, "late"), context.Canceled)
}

func TestNew_Unconfigured(t *testing.T) {
	n := New(&config.Config{})
	_, ok := n.(Nop)
	assert.True(t, ok)
	assert.NoError(t, n.Notify(context.Background(), "ignored"))
}
