package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"signal_bot/internal/models"
	"signal_bot/pkg/db"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

var est = time.FixedZone("EST", -5*3600)

func rec(symbol string, action models.Action, price float64, at time.Time) models.TradeRecord {
	return models.TradeRecord{
		Timestamp:  at,
		Symbol:     symbol,
		Action:     action,
		Price:      price,
		Prediction: 1,
		Quantity:   10,
	}
}

// общий контракт для всех реализаций
func exerciseLedger(t *testing.T, l Ledger) {
	ctx := context.Background()
	today := time.Date(2026, 3, 2, 10, 0, 0, 0, est)
	yesterday := today.AddDate(0, 0, -1)

	n, err := l.CountOn(ctx, "AAPL", today)
	require.NoError(t, err)
	assert.Zero(t, n)

	recs, err := l.Records(ctx, "AAPL")
	require.NoError(t, err)
	assert.Empty(t, recs)

	require.NoError(t, l.Append(ctx, rec("AAPL", models.ActionBuy, 100.5, yesterday)))
	require.NoError(t, l.Append(ctx, rec("AAPL", models.ActionSell, 101.25, today)))
	require.NoError(t, l.Append(ctx, rec("AAPL", models.ActionBuy, 99, today.Add(time.Hour))))
	require.NoError(t, l.Append(ctx, rec("MSFT", models.ActionBuy, 300, today)))

	n, err = l.CountOn(ctx, "AAPL", today)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = l.CountOn(ctx, "AAPL", yesterday)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	recs, err = l.Records(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, models.ActionBuy, recs[0].Action)
	assert.Equal(t, 100.5, recs[0].Price)
	assert.True(t, recs[0].Timestamp.Equal(yesterday))
	assert.Equal(t, models.ActionSell, recs[1].Action)
	assert.Equal(t, int64(10), recs[2].Quantity)
	assert.Equal(t, 1, recs[2].Prediction)

	syms, err := l.Symbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, syms)
}

func TestJournal(t *testing.T) {
	j, err := NewJournal(t.TempDir())
	require.NoError(t, err)
	exerciseLedger(t, j)
}

func TestJournalFileLayout(t *testing.T) {
	dir := t.TempDir()
	j, err := NewJournal(dir)
	require.NoError(t, err)

	at := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	require.NoError(t, j.Append(context.Background(), rec("TSLA", models.ActionBuy, 200, at)))
	require.NoError(t, j.Append(context.Background(), rec("TSLA", models.ActionSell, 210, at)))

	raw, err := os.ReadFile(filepath.Join(dir, "TSLA_trades_log.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"timestamp,symbol,action,price,prediction,qty\n"+
			"2026-03-02 15:00:00.000000,TSLA,buy,200,1,10\n"+
			"2026-03-02 15:00:00.000000,TSLA,sell,210,1,10\n",
		string(raw))
}

func TestJournalCorruptRow(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BAD_trades_log.csv"),
		[]byte("timestamp,symbol,action,price,prediction,qty\nyesterday,BAD,buy,1,1,1\n"), 0o644))

	j, err := NewJournal(dir)
	require.NoError(t, err)
	_, err = j.Records(context.Background(), "BAD")
	assert.Error(t, err)
}

func TestJournalReadsFiveColumnFiles(t *testing.T) {
	dir := t.TempDir()
	legacy := "timestamp,symbol,action,price,prediction\n" +
		"2026-03-02 15:00:00.250000,AAPL,buy,187.42,1\n" +
		"2026-03-02 15:05:00,AAPL,sell,188.1,0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AAPL_trades_log.csv"), []byte(legacy), 0o644))

	j, err := NewJournal(dir)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, j.Append(ctx, models.TradeRecord{
		Timestamp: time.Date(2026, 3, 2, 15, 10, 0, 0, time.UTC),
		Symbol:    "AAPL", Action: models.ActionBuy, Price: 187, Prediction: 1, Quantity: 7,
	}))

	recs, err := j.Records(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, int64(0), recs[0].Quantity)
	assert.Equal(t, 250*time.Millisecond, time.Duration(recs[0].Timestamp.Nanosecond()))
	assert.Equal(t, models.ActionSell, recs[1].Action)
	assert.Equal(t, int64(7), recs[2].Quantity)

	n, err := j.CountOn(ctx, "AAPL", time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestJournalRejectsShortRows(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BAD_trades_log.csv"),
		[]byte("timestamp,symbol,action,price,prediction,qty\n2026-03-02 15:00:00,BAD,buy,1\n"), 0o644))

	j, err := NewJournal(dir)
	require.NoError(t, err)
	_, err = j.Records(context.Background(), "BAD")
	assert.ErrorContains(t, err, "4 fields")
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "trades.db"))
	require.NoError(t, err)
	defer s.Close()
	exerciseLedger(t, s)
}

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, db.PoolConfig{DSN: dsn})
	require.NoError(t, err)
	tm := db.NewPgTxManager(pool)
	pg := NewPostgres(tm, tm.Close)
	defer pg.Close()

	require.NoError(t, pg.Migrate(ctx))
	_, err = tm.Conn().Exec(ctx, "TRUNCATE trades")
	require.NoError(t, err)
	exerciseLedger(t, pg)
}

type failingLedger struct {
	Ledger
	err     error
	appends int
}

func (f *failingLedger) Append(context.Context, models.TradeRecord) error {
	f.appends++
	return f.err
}

func (f *failingLedger) Close() error { return f.err }

func TestMultiMirrorsAndReadsPrimary(t *testing.T) {
	primary, err := NewJournal(t.TempDir())
	require.NoError(t, err)
	mirror, err := OpenSQLite(filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)

	m := NewMulti(primary, mirror)
	exerciseLedger(t, m)

	recs, err := mirror.Records(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Len(t, recs, 3)
	require.NoError(t, m.Close())
}

func TestMultiCombinesMirrorErrors(t *testing.T) {
	primary, err := NewJournal(t.TempDir())
	require.NoError(t, err)
	errA, errB := errors.New("a down"), errors.New("b down")
	a := &failingLedger{err: errA}
	b := &failingLedger{err: errB}

	m := NewMulti(primary, a, b)
	err = m.Append(context.Background(), rec("AAPL", models.ActionBuy, 1, time.Now()))
	var mirrorErr *MirrorError
	require.ErrorAs(t, err, &mirrorErr)
	assert.Len(t, multierr.Errors(mirrorErr.Err), 2)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)

	// основной журнал всё равно записан
	recs, err := primary.Records(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	assert.Len(t, multierr.Errors(m.Close()), 2)
}

func TestMultiPrimaryFailureSkipsMirrors(t *testing.T) {
	primaryErr := errors.New("disk full")
	primary := &failingLedger{err: primaryErr}
	mirror := &failingLedger{}

	err := NewMulti(primary, mirror).Append(context.Background(), models.TradeRecord{Symbol: "AAPL"})
	assert.ErrorIs(t, err, primaryErr)
	var mirrorErr *MirrorError
	assert.False(t, errors.As(err, &mirrorErr))
	assert.Zero(t, mirror.appends)
}
