package universe

import (
	"signal_bot/internal/modules/config"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Symbols: отфильтрованный торговый список.
type Symbols []string

func Module() fx.Option {
	return fx.Module("universe",
		fx.Provide(
			func(cfg *config.Config, log *zap.Logger) (Symbols, error) {
				syms, err := Load(cfg.UniverseFile)
				if err != nil {
					return nil, err
				}
				if len(syms) == 0 {
					return nil, errors.Errorf("universe %s is empty", cfg.UniverseFile)
				}
				log.Info("universe loaded", zap.String("file", cfg.UniverseFile), zap.Int("symbols", len(syms)))
				return Symbols(syms), nil
			},
		),
	)
}
