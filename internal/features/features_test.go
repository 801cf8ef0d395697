package features

import (
	"math"
	"testing"
	"time"

	"signal_bot/internal/models"

	"github.com/markcheno/go-talib"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBars(n int) []models.Bar {
	start := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		px := 100 + 5*math.Sin(float64(i)/4) + float64(i)*0.05
		bars[i] = models.Bar{
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   px - 0.1,
			High:   px + 0.3,
			Low:    px - 0.3,
			Close:  px,
			Volume: 1000,
		}
	}
	return bars
}

func TestWarmupUsesLargestWindow(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, 25, e.Warmup())
	assert.Equal(t, 26, e.Lookback())

	e.MACDSlow = 3
	assert.Equal(t, 14, e.Warmup())

	e.SMAPeriod = 20
	assert.Equal(t, 19, e.Warmup())
}

func TestComputeKeepsBarsOnceMACDLineIsComplete(t *testing.T) {
	e := NewEngine()
	bars := makeBars(100)

	vectors, err := e.Compute(bars)
	require.NoError(t, err)
	require.Len(t, vectors, 75)
	assert.Equal(t, bars[25].Time, vectors[0].Time)

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	fast := talib.Ema(closes, 12)
	slow := talib.Ema(closes, 26)
	assert.InDelta(t, fast[25]-slow[25], vectors[0].MACD, 1e-12)
	assert.InDelta(t, fast[99]-slow[99], vectors[74].MACD, 1e-12)
}

func TestComputeDropsWarmupBars(t *testing.T) {
	e := NewEngine()
	bars := makeBars(100)

	vectors, err := e.Compute(bars)
	require.NoError(t, err)
	require.Len(t, vectors, len(bars)-e.Warmup())

	for i, v := range vectors {
		assert.Equal(t, bars[e.Warmup()+i].Time, v.Time)
		assert.NotZero(t, v.SMA)
		assert.False(t, math.IsNaN(v.RSI))
		assert.Len(t, v.Values(), 3)
	}
}

func TestComputeSMAMatchesCloses(t *testing.T) {
	e := NewEngine()
	bars := makeBars(60)

	vectors, err := e.Compute(bars)
	require.NoError(t, err)

	last := len(bars) - 1
	var sum float64
	for i := last - e.SMAPeriod + 1; i <= last; i++ {
		sum += bars[i].Close
	}
	assert.InDelta(t, sum/float64(e.SMAPeriod), vectors[len(vectors)-1].SMA, 1e-9)
}

func TestComputeShortHistory(t *testing.T) {
	e := NewEngine()

	vectors, err := e.Compute(makeBars(e.Warmup()))
	require.NoError(t, err)
	assert.Empty(t, vectors)

	vectors, err = e.Compute(makeBars(e.Lookback()))
	require.NoError(t, err)
	assert.Len(t, vectors, 1)
}

func TestComputeNoData(t *testing.T) {
	e := NewEngine()

	_, err := e.Compute(nil)
	assert.True(t, errors.Is(err, models.ErrNoData))

	bars := makeBars(50)
	bars[20].Close = 0
	_, err = e.Compute(bars)
	assert.True(t, errors.Is(err, models.ErrNoData))

	bars[20].Close = math.NaN()
	_, err = e.Compute(bars)
	assert.True(t, errors.Is(err, models.ErrNoData))
}
