package ledger

import (
	"context"
	"time"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	"signal_bot/pkg/db"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS trades (
	id         BIGSERIAL PRIMARY KEY,
	ts         TIMESTAMPTZ      NOT NULL,
	symbol     TEXT             NOT NULL,
	action     TEXT             NOT NULL,
	price      DOUBLE PRECISION NOT NULL,
	prediction SMALLINT         NOT NULL,
	qty        BIGINT           NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trades_symbol_ts ON trades(symbol, ts);
`

// Postgres пишет журнал через tx manager из pkg/db.
type Postgres struct {
	tm     db.TxManager
	closer func()
}

func NewPostgres(tm db.TxManager, closer func()) *Postgres {
	if closer == nil {
		closer = func() {}
	}
	return &Postgres{tm: tm, closer: closer}
}

// Migrate создаёт таблицу trades, если её нет.
func (p *Postgres) Migrate(ctx context.Context) error {
	return p.tm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx, pgSchema)
		return errors.Wrap(err, "create trades")
	})
}

func (p *Postgres) Append(ctx context.Context, rec models.TradeRecord) (err error) {
	defer func() {
		if err != nil {
			err = errors.Wrap(err, "Postgres.Append")
		}
	}()
	return p.tm.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctxTx,
			`INSERT INTO trades (ts, symbol, action, price, prediction, qty) VALUES ($1, $2, $3, $4, $5, $6)`,
			rec.Timestamp.UTC(), rec.Symbol, string(rec.Action), rec.Price, rec.Prediction, rec.Quantity,
		)
		return err
	})
}

func (p *Postgres) CountOn(ctx context.Context, symbol string, day time.Time) (int, error) {
	start, end := helper.DayBounds(day)
	var n int
	err := p.tm.Conn().QueryRow(ctx,
		`SELECT COUNT(*) FROM trades WHERE symbol = $1 AND ts >= $2 AND ts < $3`,
		symbol, start, end,
	).Scan(&n)
	if err != nil {
		return 0, errors.Wrapf(err, "Postgres.CountOn %s", symbol)
	}
	return n, nil
}

// Records читает историю в read-only снимке.
func (p *Postgres) Records(ctx context.Context, symbol string) ([]models.TradeRecord, error) {
	var out []models.TradeRecord
	err := p.tm.RunReadOnly(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctxTx,
			`SELECT ts, symbol, action, price, prediction, qty FROM trades WHERE symbol = $1 ORDER BY id`,
			symbol,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				action string
				pred   int16
				rec    models.TradeRecord
			)
			if err := rows.Scan(&rec.Timestamp, &rec.Symbol, &action, &rec.Price, &pred, &rec.Quantity); err != nil {
				return errors.Wrap(err, "scan trade")
			}
			if rec.Action, err = models.ParseAction(action); err != nil {
				return err
			}
			rec.Prediction = int(pred)
			out = append(out, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, errors.Wrapf(err, "Postgres.Records %s", symbol)
	}
	return out, nil
}

func (p *Postgres) Symbols(ctx context.Context) ([]string, error) {
	rows, err := p.tm.Conn().Query(ctx, `SELECT DISTINCT symbol FROM trades ORDER BY symbol`)
	if err != nil {
		return nil, errors.Wrap(err, "Postgres.Symbols")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, errors.Wrap(err, "scan symbol")
		}
		out = append(out, sym)
	}
	return out, errors.Wrap(rows.Err(), "iterate symbols")
}

func (p *Postgres) Close() error {
	p.closer()
	return nil
}
