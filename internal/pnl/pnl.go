package pnl

import (
	"time"

	"signal_bot/internal/models"

	"github.com/shopspring/decimal"
)

// RoundTrip: пара buy -> sell. Результат на одну акцию.
type RoundTrip struct {
	Symbol   string
	OpenedAt time.Time
	ClosedAt time.Time
	Buy      decimal.Decimal
	Sell     decimal.Decimal
	Result   decimal.Decimal
}

type Report struct {
	Trades   []RoundTrip
	Realized decimal.Decimal
	Wins     int
	Losses   int
}

// WinRate в процентах; нулевой результат считается убытком.
func (r Report) WinRate() float64 {
	total := r.Wins + r.Losses
	if total == 0 {
		total = 1
	}
	return float64(r.Wins) / float64(total) * 100
}

// Reconstruct проходит записи по порядку: buy открывает (или заменяет)
// ожидающий вход, sell закрывает его. Sell без входа пропускается,
// незакрытый buy в конце в отчёт не попадает.
func Reconstruct(records []models.TradeRecord) Report {
	r := Report{Realized: decimal.Zero}
	var pending *models.TradeRecord

	for i := range records {
		rec := records[i]
		switch rec.Action {
		case models.ActionBuy:
			pending = &rec
		case models.ActionSell:
			if pending == nil {
				continue
			}
			buy := decimal.NewFromFloat(pending.Price)
			sell := decimal.NewFromFloat(rec.Price)
			res := sell.Sub(buy)
			r.Trades = append(r.Trades, RoundTrip{
				Symbol:   rec.Symbol,
				OpenedAt: pending.Timestamp,
				ClosedAt: rec.Timestamp,
				Buy:      buy,
				Sell:     sell,
				Result:   res,
			})
			r.Realized = r.Realized.Add(res)
			if res.IsPositive() {
				r.Wins++
			} else {
				r.Losses++
			}
			pending = nil
		}
	}
	return r
}

// MarkEstimate: грубая оценка по символу: (последняя цена - средняя) * объём.
func MarkEstimate(records []models.TradeRecord) decimal.Decimal {
	if len(records) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	var qty int64
	for _, rec := range records {
		sum = sum.Add(decimal.NewFromFloat(rec.Price))
		qty += rec.Quantity
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(records))))
	last := decimal.NewFromFloat(records[len(records)-1].Price)
	return last.Sub(avg).Mul(decimal.NewFromInt(qty)).Round(2)
}
