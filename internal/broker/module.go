package broker

import (
	"signal_bot/internal/marketdata"
	"signal_bot/internal/modules/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// New выбирает реализацию по BROKER.
func New(cfg *config.Config, bars marketdata.Source) Broker {
	if cfg.Broker == config.BrokerSim {
		return NewSim(bars, cfg.SimBuyingPower)
	}
	return NewAlpaca(AlpacaConfig{
		BaseURL:   cfg.AlpacaBaseURL,
		DataURL:   cfg.AlpacaDataURL,
		APIKey:    cfg.AlpacaAPIKey,
		SecretKey: cfg.AlpacaSecretKey,
		Timeout:   cfg.HTTPTimeout,
	})
}

func Module() fx.Option {
	return fx.Module("broker",
		fx.Provide(
			func(cfg *config.Config, bars marketdata.Source, log *zap.Logger) Broker {
				log.Info("broker ready",
					zap.String("broker", cfg.Broker),
					zap.String("env", cfg.BrokerEnv),
					zap.String("base_url", cfg.AlpacaBaseURL))
				return New(cfg, bars)
			},
		),
	)
}
