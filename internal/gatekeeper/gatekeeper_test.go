package gatekeeper

import (
	"context"
	"testing"
	"time"

	"signal_bot/internal/ledger"
	"signal_bot/internal/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	n     int
	err   error
	calls int
	day   time.Time
}

func (f *fakeCounter) CountOn(_ context.Context, _ string, day time.Time) (int, error) {
	f.calls++
	f.day = day
	return f.n, f.err
}

type fakePositions struct {
	positions []models.Position
	err       error
	calls     int
}

func (f *fakePositions) ListOpenPositions(context.Context) ([]models.Position, error) {
	f.calls++
	return f.positions, f.err
}

func TestCheckAllows(t *testing.T) {
	counter := &fakeCounter{n: 2}
	positions := &fakePositions{positions: []models.Position{
		{Symbol: "MSFT", Qty: 5},
		{Symbol: "AAPL", Qty: 0},
	}}
	g := New(counter, positions, 3)

	v, err := g.Check(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, v.Allowed)
	assert.Equal(t, ReasonNone, v.Reason)
}

func TestCheckDailyCapSkipsPositionQuery(t *testing.T) {
	counter := &fakeCounter{n: 3}
	positions := &fakePositions{}
	g := New(counter, positions, 3)

	v, err := g.Check(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonDailyCap, v.Reason)
	assert.Zero(t, positions.calls)
}

func TestCheckOpenPosition(t *testing.T) {
	for _, qty := range []float64{10, -4} {
		positions := &fakePositions{positions: []models.Position{{Symbol: "AAPL", Qty: qty}}}
		g := New(&fakeCounter{}, positions, 3)

		v, err := g.Check(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.False(t, v.Allowed)
		assert.Equal(t, ReasonOpenPosition, v.Reason)
	}
}

func TestCheckUsesClock(t *testing.T) {
	now := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	counter := &fakeCounter{}
	g := New(counter, &fakePositions{}, 3).WithClock(func() time.Time { return now })

	_, err := g.Check(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, now, counter.day)
}

func TestCheckIsIdempotent(t *testing.T) {
	g := New(&fakeCounter{n: 3}, &fakePositions{}, 3)
	first, err := g.Check(context.Background(), "AAPL")
	require.NoError(t, err)
	second, err := g.Check(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCheckWrapsQueryErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := New(&fakeCounter{err: boom}, &fakePositions{}, 3).Check(context.Background(), "AAPL")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "count trades for AAPL")

	_, err = New(&fakeCounter{}, &fakePositions{err: boom}, 3).Check(context.Background(), "AAPL")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "list open positions")
}

func TestDefaultCap(t *testing.T) {
	g := New(&fakeCounter{n: DefaultMaxTradesPerDay}, &fakePositions{}, 0)
	v, err := g.Check(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, ReasonDailyCap, v.Reason)
}

// Лимит считается по календарной дате: вчерашние сделки не мешают.
func TestDailyCapResetsPerDate(t *testing.T) {
	ctx := context.Background()
	j, err := ledger.NewJournal(t.TempDir())
	require.NoError(t, err)

	today := time.Date(2026, 3, 2, 14, 0, 0, 0, time.Local)
	yesterday := today.AddDate(0, 0, -1)
	add := func(at time.Time) {
		require.NoError(t, j.Append(ctx, models.TradeRecord{
			Timestamp: at, Symbol: "AAPL", Action: models.ActionBuy, Price: 100, Quantity: 1,
		}))
	}

	add(yesterday)
	add(today.Add(-2 * time.Hour))
	add(today.Add(-time.Hour))

	g := New(j, &fakePositions{}, 3).WithClock(func() time.Time { return today })
	v, err := g.Check(ctx, "AAPL")
	require.NoError(t, err)
	assert.True(t, v.Allowed, "two today plus one yesterday is under the cap")

	add(today.Add(-30 * time.Minute))
	v, err = g.Check(ctx, "AAPL")
	require.NoError(t, err)
	assert.False(t, v.Allowed)
	assert.Equal(t, ReasonDailyCap, v.Reason)

	// на следующий день счётчик обнуляется
	g.WithClock(func() time.Time { return today.AddDate(0, 0, 1) })
	v, err = g.Check(ctx, "AAPL")
	require.NoError(t, err)
	assert.True(t, v.Allowed)
}
