package ledger

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS trades (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp  TEXT    NOT NULL,
	symbol     TEXT    NOT NULL,
	action     TEXT    NOT NULL,
	price      REAL    NOT NULL,
	prediction INTEGER NOT NULL,
	qty        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trades_symbol_ts ON trades(symbol, timestamp);
`

// SQLite: таблица trades в локальном файле.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(dbPath string) (*SQLite, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "create db dir")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// один писатель: планировщик ходит в журнал из одной горутины
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, "apply pragma %q", p)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "init schema")
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Append(ctx context.Context, rec models.TradeRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trades (timestamp, symbol, action, price, prediction, qty) VALUES (?, ?, ?, ?, ?, ?)`,
		formatTime(rec.Timestamp), rec.Symbol, string(rec.Action), rec.Price, rec.Prediction, rec.Quantity,
	)
	return errors.Wrapf(err, "sqlite insert %s", rec.Symbol)
}

func (s *SQLite) CountOn(ctx context.Context, symbol string, day time.Time) (int, error) {
	start, end := helper.DayBounds(day)
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trades WHERE symbol = ? AND timestamp >= ? AND timestamp < ?`,
		symbol, formatTime(start), formatTime(end),
	).Scan(&n)
	if err != nil {
		return 0, errors.Wrapf(err, "sqlite count %s", symbol)
	}
	return n, nil
}

func (s *SQLite) Records(ctx context.Context, symbol string) ([]models.TradeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, symbol, action, price, prediction, qty FROM trades WHERE symbol = ? ORDER BY id`,
		symbol,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "sqlite records %s", symbol)
	}
	defer rows.Close()

	var out []models.TradeRecord
	for rows.Next() {
		var (
			ts, action string
			rec        models.TradeRecord
		)
		if err := rows.Scan(&ts, &rec.Symbol, &action, &rec.Price, &rec.Prediction, &rec.Quantity); err != nil {
			return nil, errors.Wrap(err, "scan trade")
		}
		if rec.Timestamp, err = parseTime(ts); err != nil {
			return nil, errors.Wrap(err, "parse timestamp")
		}
		if rec.Action, err = models.ParseAction(action); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, errors.Wrap(rows.Err(), "iterate trades")
}

func (s *SQLite) Symbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM trades ORDER BY symbol`)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite symbols")
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

func (s *SQLite) Close() error {
	return s.db.Close()
}
