package main

import (
	"context"

	"signal_bot/internal/broker"
	"signal_bot/internal/ledger"
	"signal_bot/internal/marketdata"
	"signal_bot/internal/metrics"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/health"
	"signal_bot/internal/notify"
	"signal_bot/internal/runner"
	"signal_bot/internal/universe"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const serviceName = "signal_bot"

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger.SetServiceName(serviceName)
	l, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logger.Init(l), nil
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	tracing.SetServiceName(serviceName)
	_, closeFn, err := tracing.InitTracer(tracing.Config{
		Enabled:    cfg.TracingEnabled,
		Host:       cfg.JaegerHost,
		Port:       cfg.JaegerPort,
		SampleRate: cfg.JaegerSampleRate,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeFn()
			return nil
		},
	})
	return nil
}

func main() {
	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
			newLogger,
		),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
		fx.Invoke(initTracing),
		config.Module(),
		metrics.Module(),
		universe.Module(),
		marketdata.Module(),
		broker.Module(),
		ledger.Module(),
		notify.Module(),
		health.Module(),
		runner.Module(),
	)
	app.Run()
}
