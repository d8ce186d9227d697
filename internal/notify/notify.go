// internal/notify/notify.go
package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier шлёт приветствие после регистрации. Сбой здесь никогда
// не валит саму регистрацию — только лог.
type Notifier interface {
	Welcome(username, email string)
}

// Noop используется, когда канал уведомлений не настроен.
type Noop struct{}

func (Noop) Welcome(string, string) {}

// Telegram публикует событие регистрации в служебный чат.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Welcome(username, email string) {
	msg := tgbotapi.NewMessage(t.chatID,
		fmt.Sprintf("🧾 Новый пользователь: %s (%s)", username, email))
	if _, err := t.bot.Send(msg); err != nil {
		slog.Warn("welcome notification failed", "error", err, "email", email)
	}
}
