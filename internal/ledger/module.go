package ledger

import (
	"context"

	"signal_bot/internal/modules/config"
	"signal_bot/pkg/db"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// New собирает журнал по конфигу: CSV всегда основной, реляционное
// хранилище (если задано): зеркало.
func New(ctx context.Context, cfg *config.Config) (Ledger, error) {
	journal, err := NewJournal(cfg.JournalDir)
	if err != nil {
		return nil, err
	}

	switch cfg.LedgerDriver {
	case config.LedgerSQLite:
		store, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return NewMulti(journal, store), nil
	case config.LedgerPostgres:
		pool, err := db.NewPool(ctx, db.PoolConfig{DSN: cfg.DatabaseDSN})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create poolMaster")
		}
		tm := db.NewPgTxManager(pool)
		pg := NewPostgres(tm, tm.Close)
		if err := pg.Migrate(ctx); err != nil {
			tm.Close()
			return nil, err
		}
		return NewMulti(journal, pg), nil
	default:
		return journal, nil
	}
}

func Module() fx.Option {
	return fx.Module("ledger",
		fx.Provide(
			func(lc fx.Lifecycle, ctx context.Context, cfg *config.Config, log *zap.Logger) (Ledger, error) {
				l, err := New(ctx, cfg)
				if err != nil {
					return nil, err
				}
				log.Info("ledger ready",
					zap.String("journal_dir", cfg.JournalDir),
					zap.String("driver", cfg.LedgerDriver))
				lc.Append(fx.Hook{
					OnStop: func(context.Context) error { return l.Close() },
				})
				return l, nil
			},
		),
	)
}
