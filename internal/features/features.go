package features

import (
	"math"

	"signal_bot/internal/models"

	"github.com/markcheno/go-talib"
	"github.com/pkg/errors"
)

// Engine считает признаки по закрытиям: SMA, RSI и линию MACD.
type Engine struct {
	SMAPeriod int
	RSIPeriod int
	MACDFast  int
	MACDSlow  int
}

func NewEngine() Engine {
	return Engine{
		SMAPeriod: 10,
		RSIPeriod: 14,
		MACDFast:  12,
		MACDSlow:  26,
	}
}

// Warmup: индекс первой свечи, у которой все окна индикаторов полные.
// Линия MACD готова вместе с медленной EMA, сигнальная линия не нужна.
func (e Engine) Warmup() int {
	w := e.SMAPeriod - 1
	if e.RSIPeriod > w {
		w = e.RSIPeriod
	}
	if m := e.MACDSlow - 1; m > w {
		w = m
	}
	return w
}

// Lookback: минимум свечей, чтобы получить хотя бы один вектор.
func (e Engine) Lookback() int { return e.Warmup() + 1 }

// Compute возвращает по вектору на каждую свечу после прогрева.
// Свечи внутри прогрева отбрасываются, нулями не заполняются.
func (e Engine) Compute(bars []models.Bar) ([]models.FeatureVector, error) {
	if len(bars) == 0 {
		return nil, errors.Wrap(models.ErrNoData, "empty bar sequence")
	}
	closes := make([]float64, len(bars))
	for i, b := range bars {
		if !validPrice(b.Close) {
			return nil, errors.Wrapf(models.ErrNoData, "bar %d has no close", i)
		}
		closes[i] = b.Close
	}

	warmup := e.Warmup()
	if len(bars) <= warmup {
		return nil, nil
	}

	sma := talib.Sma(closes, e.SMAPeriod)
	rsi := talib.Rsi(closes, e.RSIPeriod)
	macd := macdLine(closes, e.MACDFast, e.MACDSlow)

	out := make([]models.FeatureVector, 0, len(bars)-warmup)
	for i := warmup; i < len(bars); i++ {
		v := models.FeatureVector{
			Time: bars[i].Time,
			SMA:  sma[i],
			RSI:  rsi[i],
			MACD: macd[i],
		}
		if !finite(v.SMA) || !finite(v.RSI) || !finite(v.MACD) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// macdLine: EMA(fast) - EMA(slow), валидна с индекса slow-1.
func macdLine(closes []float64, fast, slow int) []float64 {
	f := talib.Ema(closes, fast)
	s := talib.Ema(closes, slow)
	out := make([]float64, len(closes))
	for i := slow - 1; i < len(closes); i++ {
		out[i] = f[i] - s[i]
	}
	return out
}

func validPrice(p float64) bool { return finite(p) && p > 0 }

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
