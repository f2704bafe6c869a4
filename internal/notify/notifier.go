// Package notify delivers best-effort trade notifications over Telegram.
// Delivery failures are logged and never surfaced to the tick pipeline.
package notify

import (
	"fmt"
	"io"
	"log"
	"strconv"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier is the outbound notification interface used by the agent.
type Notifier interface {
	Send(chatID, msg string) bool
	Sendf(chatID, format string, args ...any) bool
}

// Telegram sends messages through the Bot API. The zero-value-safe nil
// receiver allows the agent to run without a configured bot token.
type Telegram struct {
	bot    *tgbot.BotAPI
	logger *log.Logger
}

// NewTelegram creates a Telegram notifier. An empty token yields a nil
// notifier, which silently drops every message.
func NewTelegram(token string, logger *log.Logger) (*Telegram, error) {
	if token == "" {
		return nil, nil
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &Telegram{bot: b, logger: logger}, nil
}

// Send delivers msg to the chat identified by chatID (a numeric string).
// Returns false when the notifier is unconfigured, the target is invalid,
// or the Bot API rejects the message.
func (t *Telegram) Send(chatID, msg string) bool {
	if t == nil || t.bot == nil || chatID == "" {
		return false
	}
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		t.logger.Printf("invalid notify target %q: %v", chatID, err)
		return false
	}
	if _, err := t.bot.Send(tgbot.NewMessage(id, msg)); err != nil {
		t.logger.Printf("telegram send failed: %v", err)
		return false
	}
	return true
}

// Sendf formats and delivers a message.
func (t *Telegram) Sendf(chatID, format string, args ...any) bool {
	return t.Send(chatID, fmt.Sprintf(format, args...))
}

var _ Notifier = (*Telegram)(nil)
