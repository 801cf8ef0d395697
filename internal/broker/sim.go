package broker

import (
	"context"
	"sort"
	"sync"

	"signal_bot/internal/marketdata"
	"signal_bot/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Sim: брокер для сухого прогона. Цена: close последней свечи из
// источника данных, исполнение мгновенное по этой цене.
type Sim struct {
	bars marketdata.Source

	mu          sync.Mutex
	buyingPower float64
	positions   map[string]models.Position
	orders      []models.BracketOrder
}

func NewSim(bars marketdata.Source, buyingPower float64) *Sim {
	return &Sim{
		bars:        bars,
		buyingPower: buyingPower,
		positions:   make(map[string]models.Position),
	}
}

func (s *Sim) BuyingPower(context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buyingPower, nil
}

func (s *Sim) LastPrice(ctx context.Context, symbol string) (float64, error) {
	bars, err := s.bars.RecentBars(ctx, symbol, 1)
	if err != nil {
		return 0, errors.Wrapf(err, "sim last price %s", symbol)
	}
	if len(bars) == 0 {
		return 0, errors.Wrapf(models.ErrNoData, "sim last price %s", symbol)
	}
	return bars[len(bars)-1].Close, nil
}

func (s *Sim) ListOpenPositions(context.Context) ([]models.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Position, 0, len(s.positions))
	for _, p := range s.positions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (s *Sim) SubmitBracketOrder(ctx context.Context, o models.BracketOrder) (string, error) {
	if o.Qty <= 0 {
		return "", errors.Errorf("sim: qty must be positive, got %d", o.Qty)
	}
	px, err := s.LastPrice(ctx, o.Symbol)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cost := px * float64(o.Qty)
	if cost > s.buyingPower {
		return "", errors.Errorf("sim: insufficient buying power %.2f for %.2f", s.buyingPower, cost)
	}
	qty := float64(o.Qty)
	if o.Side == models.ActionSell {
		qty = -qty
	}
	s.buyingPower -= cost
	s.positions[o.Symbol] = models.Position{Symbol: o.Symbol, Qty: qty, AvgEntryPrice: px}
	s.orders = append(s.orders, o)

	if o.ClientOrderID != "" {
		return o.ClientOrderID, nil
	}
	return uuid.NewString(), nil
}

// Orders: принятые заявки в порядке поступления.
func (s *Sim) Orders() []models.BracketOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.BracketOrder(nil), s.orders...)
}
