package marketdata

import (
	"context"
	"time"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/pkg/errors"
)

// ChartFetcher: обёртка над chart.Get, подменяется в тестах.
type ChartFetcher func(params *chart.Params) ([]models.Bar, error)

// Yahoo: свечи из Yahoo Finance chart API (piquette/finance-go).
type Yahoo struct {
	interval datetime.Interval
	window   time.Duration
	fetch    ChartFetcher
	now      func() time.Time
}

func NewYahoo(timeframe string) *Yahoo {
	interval, window := yahooInterval(timeframe)
	return &Yahoo{
		interval: interval,
		window:   window,
		fetch:    fetchChart,
		now:      time.Now,
	}
}

// Yahoo не отдаёт минутки глубже ~7 дней, поэтому окно зависит от интервала.
func yahooInterval(tf string) (datetime.Interval, time.Duration) {
	switch helper.NormTF(tf) {
	case "5m":
		return datetime.FiveMins, 5 * 24 * time.Hour
	case "15m":
		return datetime.FifteenMins, 10 * 24 * time.Hour
	case "1h":
		return datetime.OneHour, 30 * 24 * time.Hour
	case "1d":
		return datetime.OneDay, 365 * 24 * time.Hour
	default:
		return datetime.OneMin, 5 * 24 * time.Hour
	}
}

func (y *Yahoo) RecentBars(ctx context.Context, symbol string, limit int) ([]models.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	end := y.now()
	start := end.Add(-y.window)
	bars, err := y.fetch(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: y.interval,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "yahoo chart %s", symbol)
	}
	if len(bars) == 0 {
		return nil, errors.Wrapf(models.ErrNoData, "yahoo chart %s", symbol)
	}
	return normalize(bars, limit), nil
}

func fetchChart(params *chart.Params) ([]models.Bar, error) {
	iter := chart.Get(params)

	var bars []models.Bar
	for iter.Next() {
		b := iter.Bar()
		closePx, _ := b.Close.Float64()
		if closePx == 0 {
			// пустые минутки (нет сделок) приходят с нулями
			continue
		}
		open, _ := b.Open.Float64()
		high, _ := b.High.Float64()
		low, _ := b.Low.Float64()
		bars = append(bars, models.Bar{
			Time:   time.Unix(int64(b.Timestamp), 0).UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePx,
			Volume: float64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}
