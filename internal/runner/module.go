package runner

import (
	"context"

	"signal_bot/internal/broker"
	"signal_bot/internal/gatekeeper"
	"signal_bot/internal/ledger"
	"signal_bot/internal/marketdata"
	"signal_bot/internal/metrics"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/notify"
	"signal_bot/internal/universe"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type controllerIn struct {
	fx.In

	Cfg      *config.Config
	Ledger   ledger.Ledger
	Broker   broker.Broker
	Bars     marketdata.Source
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

func newController(in controllerIn) *Controller {
	gate := gatekeeper.New(in.Ledger, in.Broker, in.Cfg.MaxTradesPerDay)
	return NewController(Deps{
		Gate:     gate,
		Bars:     in.Bars,
		Broker:   in.Broker,
		Ledger:   in.Ledger,
		Notifier: in.Notifier,
		Metrics:  in.Metrics,
		Logger:   in.Logger,
	}, Params{
		BarLimit:    in.Cfg.BarLimit,
		Band:        in.Cfg.ProtectiveBand,
		Fraction:    in.Cfg.AllocationFraction,
		MinExamples: in.Cfg.MinTrainingExamples,
	})
}

func newScheduler(
	cfg *config.Config,
	c *Controller,
	symbols universe.Symbols,
	obs SweepObserver,
	m *metrics.Metrics,
	log *zap.Logger,
) *Scheduler {
	return NewScheduler(c, symbols, cfg.SweepInterval, log).
		WithObserver(obs).
		WithMetrics(m)
}

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			newController,
			newScheduler,
		),
		fx.Invoke(func(lc fx.Lifecycle, s *Scheduler, log *zap.Logger) {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						defer close(done)
						_ = s.Run(ctx)
					}()
					return nil
				},
				OnStop: func(stopCtx context.Context) error {
					cancel()
					// ждём текущий цикл, но не дольше таймаута остановки fx
					select {
					case <-done:
					case <-stopCtx.Done():
						log.Warn("scheduler did not stop in time")
					}
					return nil
				},
			})
		}),
	)
}
