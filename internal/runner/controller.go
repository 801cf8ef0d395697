package runner

import (
	"context"
	"time"

	"signal_bot/internal/features"
	"signal_bot/internal/gatekeeper"
	"signal_bot/internal/ledger"
	"signal_bot/internal/metrics"
	"signal_bot/internal/models"
	"signal_bot/internal/risk"
	"signal_bot/internal/signal"
	"signal_bot/pkg/tracing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Status string

const (
	StatusExecuted Status = "executed"
	StatusDenied   Status = "denied"
	StatusFailed   Status = "failed"
)

// Outcome: итог одного цикла по символу.
type Outcome struct {
	Symbol   string
	Status   Status
	Reason   string
	Decision *models.TradeDecision
	OrderID  string
}

type Gate interface {
	Check(ctx context.Context, symbol string) (gatekeeper.Verdict, error)
}

type BarSource interface {
	RecentBars(ctx context.Context, symbol string, limit int) ([]models.Bar, error)
}

type Broker interface {
	BuyingPower(ctx context.Context) (float64, error)
	LastPrice(ctx context.Context, symbol string) (float64, error)
	SubmitBracketOrder(ctx context.Context, order models.BracketOrder) (string, error)
}

type TradeWriter interface {
	Append(ctx context.Context, rec models.TradeRecord) error
}

type Alerter interface {
	SendAlert(ctx context.Context, symbol string, action models.Action, price float64) error
}

type Deps struct {
	Gate     Gate
	Bars     BarSource
	Broker   Broker
	Ledger   TradeWriter
	Notifier Alerter
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

type Params struct {
	BarLimit    int
	Band        float64
	Fraction    float64
	MinExamples int
}

// Controller проводит один символ через цикл: допуск, признаки, сигнал,
// размер, bracket-заявка, журнал, уведомление.
type Controller struct {
	gate     Gate
	bars     BarSource
	broker   Broker
	ledger   TradeWriter
	notifier Alerter
	metrics  *metrics.Metrics
	log      *zap.Logger

	engine   features.Engine
	model    *signal.Model
	sizer    risk.Sizer
	barLimit int
	band     float64
	now      func() time.Time
}

func NewController(d Deps, p Params) *Controller {
	if p.Band <= 0 {
		p.Band = DefaultBand
	}
	engine := features.NewEngine()
	if p.BarLimit < engine.Lookback() {
		p.BarLimit = 100
	}
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		gate:     d.Gate,
		bars:     d.Bars,
		broker:   d.Broker,
		ledger:   d.Ledger,
		notifier: d.Notifier,
		metrics:  d.Metrics,
		log:      log,
		engine:   engine,
		model:    signal.NewModel(p.MinExamples),
		sizer:    risk.NewSizer(p.Fraction),
		barLimit: p.BarLimit,
		band:     p.Band,
		now:      time.Now,
	}
}

// WithModel подменяет модель (тесты, другой классификатор).
func (c *Controller) WithModel(m *signal.Model) *Controller {
	c.model = m
	return c
}

func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	return c
}

// RunCycle: ошибка означает, что цикл по символу прерван; отказ
// гейткипера ошибкой не является.
func (c *Controller) RunCycle(ctx context.Context, symbol string) (out Outcome, err error) {
	span, ctx := tracing.StartSpan(ctx, "runner.cycle", symbol)
	out = Outcome{Symbol: symbol, Status: StatusFailed}
	defer func() {
		span.SetTag("status", string(out.Status))
		tracing.MarkError(span, err)
		span.Finish()
		c.metrics.Cycle(string(out.Status))
	}()

	log := c.log.With(zap.String("symbol", symbol))

	verdict, err := c.gate.Check(ctx, symbol)
	if err != nil {
		log.Warn("gatekeeper check failed", zap.Error(err))
		return out, err
	}
	if !verdict.Allowed {
		out.Status = StatusDenied
		out.Reason = string(verdict.Reason)
		log.Info("skip symbol", zap.String("reason", out.Reason))
		return out, nil
	}

	decision, err := c.decide(ctx, symbol)
	if err != nil {
		log.Warn("no decision", zap.Error(err))
		return out, err
	}
	out.Decision = &decision

	order := models.BracketOrder{
		ClientOrderID: uuid.NewString(),
		Symbol:        symbol,
		Side:          decision.Action,
		Qty:           decision.Quantity,
		StopLoss:      decision.StopLoss,
		TakeProfit:    decision.TakeProfit,
	}
	orderID, err := c.broker.SubmitBracketOrder(ctx, order)
	if err != nil {
		log.Error("order submission failed",
			zap.String("action", string(decision.Action)),
			zap.Int64("qty", decision.Quantity),
			zap.Error(err))
		return out, errors.Wrapf(models.ErrSubmission, "%s: %v", symbol, err)
	}

	out.Status = StatusExecuted
	out.OrderID = orderID
	c.metrics.Order(string(decision.Action))
	log.Info("order submitted",
		zap.String("action", string(decision.Action)),
		zap.Int64("qty", decision.Quantity),
		zap.Float64("price", decision.Price),
		zap.Float64("stop_loss", decision.StopLoss),
		zap.Float64("take_profit", decision.TakeProfit),
		zap.String("order_id", orderID))

	// заявка уже у брокера: сбой журнала или уведомления исход не меняет
	if err := c.ledger.Append(ctx, models.NewTradeRecord(decision, c.now())); err != nil {
		var mirrorErr *ledger.MirrorError
		if errors.As(err, &mirrorErr) {
			log.Warn("trade recorded, mirror write failed", zap.String("order_id", orderID), zap.Error(mirrorErr.Err))
		} else {
			log.Error("trade not recorded", zap.String("order_id", orderID), zap.Error(err))
		}
	}
	if err := c.notifier.SendAlert(ctx, symbol, decision.Action, decision.Price); err != nil {
		c.metrics.NotificationFailed()
		log.Warn("alert not sent", zap.Error(errors.Wrapf(models.ErrNotification, "%v", err)))
	}
	return out, nil
}

// decide: шаги 2-6: свечи, признаки, сигнал, размер и защитные цены.
func (c *Controller) decide(ctx context.Context, symbol string) (models.TradeDecision, error) {
	bars, err := c.bars.RecentBars(ctx, symbol, c.barLimit)
	if err != nil {
		return models.TradeDecision{}, errors.Wrap(err, "recent bars")
	}
	if len(bars) == 0 {
		return models.TradeDecision{}, errors.Wrap(models.ErrNoData, "recent bars")
	}

	vectors, err := c.engine.Compute(bars)
	if err != nil {
		return models.TradeDecision{}, errors.Wrap(err, "features")
	}
	train, latest, err := signal.BuildExamples(bars, vectors)
	if err != nil {
		return models.TradeDecision{}, errors.Wrap(err, "examples")
	}
	pred, err := c.model.Predict(train, latest)
	if err != nil {
		return models.TradeDecision{}, errors.Wrap(err, "signal")
	}

	bp, err := c.broker.BuyingPower(ctx)
	if err != nil {
		return models.TradeDecision{}, errors.Wrap(err, "buying power")
	}
	px, err := c.broker.LastPrice(ctx, symbol)
	if err != nil {
		return models.TradeDecision{}, errors.Wrap(err, "last price")
	}
	qty, err := c.sizer.Quantity(bp, px)
	if err != nil {
		return models.TradeDecision{}, err
	}

	action := models.ActionFromLabel(pred)
	sl, tp := calcProtective(action, px, c.band)
	return models.TradeDecision{
		Symbol:     symbol,
		Action:     action,
		Quantity:   qty,
		Price:      px,
		Prediction: pred,
		StopLoss:   sl,
		TakeProfit: tp,
		Time:       c.now(),
	}, nil
}
