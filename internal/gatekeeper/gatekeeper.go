package gatekeeper

import (
	"context"
	"time"

	"signal_bot/internal/models"

	"github.com/pkg/errors"
)

const DefaultMaxTradesPerDay = 3

type DenyReason string

const (
	ReasonNone         DenyReason = ""
	ReasonDailyCap     DenyReason = "daily trade limit reached"
	ReasonOpenPosition DenyReason = "position already open"
)

// Verdict: отказ это ожидаемый исход, а не ошибка.
type Verdict struct {
	Allowed bool
	Reason  DenyReason
}

type TradeCounter interface {
	CountOn(ctx context.Context, symbol string, day time.Time) (int, error)
}

type PositionLister interface {
	ListOpenPositions(ctx context.Context) ([]models.Position, error)
}

type Gatekeeper struct {
	trades    TradeCounter
	positions PositionLister
	maxPerDay int
	now       func() time.Time
}

func New(trades TradeCounter, positions PositionLister, maxPerDay int) *Gatekeeper {
	if maxPerDay <= 0 {
		maxPerDay = DefaultMaxTradesPerDay
	}
	return &Gatekeeper{
		trades:    trades,
		positions: positions,
		maxPerDay: maxPerDay,
		now:       time.Now,
	}
}

// WithClock подменяет часы (локальная дата берётся из них).
func (g *Gatekeeper) WithClock(now func() time.Time) *Gatekeeper {
	g.now = now
	return g
}

// Check: лимит сделок за календарный день и отсутствие открытой позиции.
// Ничего не пишет.
func (g *Gatekeeper) Check(ctx context.Context, symbol string) (Verdict, error) {
	n, err := g.trades.CountOn(ctx, symbol, g.now())
	if err != nil {
		return Verdict{}, errors.Wrapf(err, "count trades for %s", symbol)
	}
	if n >= g.maxPerDay {
		return Verdict{Reason: ReasonDailyCap}, nil
	}

	positions, err := g.positions.ListOpenPositions(ctx)
	if err != nil {
		return Verdict{}, errors.Wrap(err, "list open positions")
	}
	for _, p := range positions {
		if p.Symbol == symbol && p.IsOpen() {
			return Verdict{Reason: ReasonOpenPosition}, nil
		}
	}
	return Verdict{Allowed: true}, nil
}
