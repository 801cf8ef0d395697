package ledger

import (
	"context"
	"time"

	"signal_bot/internal/models"
)

// Ledger: append-only журнал исполненных сделок.
type Ledger interface {
	Append(ctx context.Context, rec models.TradeRecord) error
	// CountOn: сколько записей по symbol попало в календарный день day
	// (дата берётся в зоне day).
	CountOn(ctx context.Context, symbol string, day time.Time) (int, error)
	// Records: записи по symbol в порядке добавления.
	Records(ctx context.Context, symbol string) ([]models.TradeRecord, error)
	Symbols(ctx context.Context) ([]string, error)
	Close() error
}

// формат времени в текстовых хранилищах: фиксированная ширина, UTC,
// поэтому лексикографический порядок совпадает с хронологическим.
const timeLayout = "2006-01-02 15:04:05.000000"

// при разборе дробная часть секунд необязательна
const parseLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(parseLayout, s, time.UTC)
}
