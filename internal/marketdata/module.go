package marketdata

import (
	"signal_bot/internal/modules/config"

	"go.uber.org/fx"
)

// New выбирает источник свечей по DATA_SOURCE.
func New(cfg *config.Config) Source {
	if cfg.DataSource == config.DataYahoo {
		return NewYahoo(cfg.Timeframe)
	}
	return NewAlpaca(AlpacaConfig{
		DataURL:   cfg.AlpacaDataURL,
		APIKey:    cfg.AlpacaAPIKey,
		SecretKey: cfg.AlpacaSecretKey,
		Timeframe: cfg.Timeframe,
		Feed:      cfg.AlpacaDataFeed,
		Timeout:   cfg.HTTPTimeout,
	})
}

func Module() fx.Option {
	return fx.Module("marketdata",
		fx.Provide(New),
	)
}
