// Package notification pushes run events to external channels.
package notification

import (
	"fmt"
	"time"

	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/raykavin/wheelhouse/pkg/config"
	"github.com/raykavin/wheelhouse/pkg/logger"
)

// Telegram implements core.Notifier over a Telegram bot. It only sends;
// simulations take no inbound commands.
type Telegram struct {
	client *tb.Bot
	chat   *tb.Chat
	log    logger.Logger
}

// NewTelegram creates a Telegram notifier from the configuration block.
func NewTelegram(cfg config.TelegramConfig, log logger.Logger) (*Telegram, error) {
	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     cfg.Token,
		Poller:    &tb.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Telegram{
		client: client,
		chat:   &tb.Chat{ID: cfg.ChatID},
		log:    log,
	}, nil
}

// Notify implements core.Notifier. Send failures are logged, never returned:
// a broken notifier must not affect a run.
func (t *Telegram) Notify(message string) {
	if _, err := t.client.Send(t.chat, message); err != nil {
		t.log.WithError(err).Error("failed to send telegram message")
	}
}

// OnError implements core.Notifier.
func (t *Telegram) OnError(err error) {
	t.Notify(fmt.Sprintf("🚨 *ERROR*\n%s", err))
}
