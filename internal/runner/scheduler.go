package runner

import (
	"context"
	"time"

	"signal_bot/internal/metrics"

	"go.uber.org/zap"
)

const DefaultInterval = 5 * time.Minute

type Cycler interface {
	RunCycle(ctx context.Context, symbol string) (Outcome, error)
}

// SweepReport: итог одного прохода по списку символов.
type SweepReport struct {
	StartedAt   time.Time
	Duration    time.Duration
	Executed    int
	Denied      int
	Failed      int
	Interrupted bool
}

// SweepObserver получает отчёт после каждого прохода (health).
type SweepObserver interface {
	SweepDone(r SweepReport)
}

// Scheduler: проход сразу при старте, потом раз в Interval.
// Символы идут строго по очереди в одной горутине.
type Scheduler struct {
	cycler   Cycler
	symbols  []string
	interval time.Duration
	log      *zap.Logger
	observer SweepObserver
	metrics  *metrics.Metrics
}

func NewScheduler(cycler Cycler, symbols []string, interval time.Duration, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		cycler:   cycler,
		symbols:  symbols,
		interval: interval,
		log:      log,
	}
}

func (s *Scheduler) WithObserver(o SweepObserver) *Scheduler {
	s.observer = o
	return s
}

func (s *Scheduler) WithMetrics(m *metrics.Metrics) *Scheduler {
	s.metrics = m
	return s
}

// Run крутится до отмены ctx и возвращает ctx.Err().
// Начатый цикл по символу при отмене доводится до конца.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("scheduler started",
		zap.Int("symbols", len(s.symbols)),
		zap.Duration("interval", s.interval))

	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep прогоняет все символы. Ошибка или отказ по одному символу
// на остальные не влияет.
func (s *Scheduler) Sweep(ctx context.Context) SweepReport {
	r := SweepReport{StartedAt: time.Now()}

	for _, symbol := range s.symbols {
		if ctx.Err() != nil {
			r.Interrupted = true
			break
		}
		out, err := s.cycler.RunCycle(context.WithoutCancel(ctx), symbol)
		switch {
		case err != nil:
			r.Failed++
			s.log.Warn("cycle failed",
				zap.String("symbol", symbol),
				zap.Error(err))
		case out.Status == StatusDenied:
			r.Denied++
		default:
			r.Executed++
		}
	}

	r.Duration = time.Since(r.StartedAt)
	s.metrics.SweepDuration(r.Duration)
	s.log.Info("sweep done",
		zap.Int("executed", r.Executed),
		zap.Int("denied", r.Denied),
		zap.Int("failed", r.Failed),
		zap.Bool("interrupted", r.Interrupted),
		zap.Duration("took", r.Duration))
	if s.observer != nil {
		s.observer.SweepDone(r)
	}
	return r
}
