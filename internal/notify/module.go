package notify

import (
	"signal_bot/internal/modules/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// New выбирает канал по NOTIFIER.
func New(cfg *config.Config, log *zap.Logger) (Notifier, error) {
	switch cfg.Notifier {
	case config.NotifierSMS:
		return NewSMS(TwilioConfig{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			From:       cfg.TwilioPhoneNumber,
			To:         cfg.MyPhoneNumber,
			Timeout:    cfg.HTTPTimeout,
		}), nil
	case config.NotifierTelegram:
		return NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
	default:
		return NewStdout(log), nil
	}
}

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(New),
	)
}
