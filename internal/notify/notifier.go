package notify

import (
	"context"
	"fmt"
	"strings"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Notifier: best-effort уведомления об исполненных сделках.
type Notifier interface {
	SendAlert(ctx context.Context, symbol string, action models.Action, price float64) error
	SendText(ctx context.Context, msg string) error
}

// AlertText: текст алерта, одинаковый для всех каналов.
func AlertText(symbol string, action models.Action, price float64) string {
	return fmt.Sprintf("📈 Trade Alert: %s %s at $%s",
		strings.ToUpper(string(action)), symbol, helper.RoundPrice(price))
}

const TestText = "🚨 Test Alert: Your bot's notification system is working!"

// Telegram: отправка в один чат.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "telegram bot")
	}
	return &Telegram{bot: b, chatID: chatID}, nil
}

// NewTelegramWithEndpoint: для self-hosted Bot API (и тестов).
// endpoint в формате tgbot.APIEndpoint: ".../bot%s/%s".
func NewTelegramWithEndpoint(token, endpoint string, chatID int64) (*Telegram, error) {
	b, err := tgbot.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "telegram bot")
	}
	return &Telegram{bot: b, chatID: chatID}, nil
}

func (t *Telegram) SendText(_ context.Context, msg string) error {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return errors.New("telegram notifier is not configured")
	}
	if _, err := t.bot.Send(tgbot.NewMessage(t.chatID, msg)); err != nil {
		return errors.Wrap(err, "telegram send")
	}
	return nil
}

func (t *Telegram) SendAlert(ctx context.Context, symbol string, action models.Action, price float64) error {
	return t.SendText(ctx, AlertText(symbol, action, price))
}

// Stdout: только лог, ничего не отправляет.
type Stdout struct {
	log *zap.Logger
}

func NewStdout(log *zap.Logger) *Stdout { return &Stdout{log: log} }

func (s *Stdout) SendText(_ context.Context, msg string) error {
	s.log.Info("notification", zap.String("text", msg))
	return nil
}

func (s *Stdout) SendAlert(ctx context.Context, symbol string, action models.Action, price float64) error {
	return s.SendText(ctx, AlertText(symbol, action, price))
}
