package models

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// ActionFromLabel: 1 -> buy, всё остальное -> sell.
func ActionFromLabel(label int) Action {
	if label == LabelUp {
		return ActionBuy
	}
	return ActionSell
}

func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionBuy:
		return ActionBuy, nil
	case ActionSell:
		return ActionSell, nil
	}
	return "", errors.Errorf("unknown action %q", s)
}

// TradeDecision: результат успешного цикла по символу.
type TradeDecision struct {
	Symbol     string
	Action     Action
	Quantity   int64
	Price      float64 // reference price
	Prediction int
	StopLoss   float64
	TakeProfit float64
	Time       time.Time
}

// BracketOrder: market-ордер с привязанными SL и TP.
type BracketOrder struct {
	ClientOrderID string
	Symbol        string
	Side          Action
	Qty           int64
	StopLoss      float64
	TakeProfit    float64
}

// TradeRecord: запись в журнале сделок. Timestamp: время исполнения.
type TradeRecord struct {
	Timestamp  time.Time
	Symbol     string
	Action     Action
	Price      float64
	Prediction int
	Quantity   int64
}

func NewTradeRecord(d TradeDecision, executedAt time.Time) TradeRecord {
	return TradeRecord{
		Timestamp:  executedAt,
		Symbol:     d.Symbol,
		Action:     d.Action,
		Price:      d.Price,
		Prediction: d.Prediction,
		Quantity:   d.Quantity,
	}
}
