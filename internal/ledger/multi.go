package ledger

import (
	"context"
	"time"

	"signal_bot/internal/models"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Multi пишет в основной журнал и зеркала. Чтение только из основного.
// Ошибка основного прерывает запись; ошибки зеркал собираются вместе.
type Multi struct {
	primary Ledger
	mirrors []Ledger
}

// MirrorError: основной журнал записан, не записали только зеркала.
type MirrorError struct {
	Err error
}

func (e *MirrorError) Error() string { return "ledger mirror: " + e.Err.Error() }
func (e *MirrorError) Unwrap() error { return e.Err }

func NewMulti(primary Ledger, mirrors ...Ledger) *Multi {
	return &Multi{primary: primary, mirrors: mirrors}
}

func (m *Multi) Append(ctx context.Context, rec models.TradeRecord) error {
	if err := m.primary.Append(ctx, rec); err != nil {
		return err
	}
	var errs error
	for i, l := range m.mirrors {
		if err := l.Append(ctx, rec); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "mirror %d", i))
		}
	}
	if errs != nil {
		return &MirrorError{Err: errs}
	}
	return nil
}

func (m *Multi) CountOn(ctx context.Context, symbol string, day time.Time) (int, error) {
	return m.primary.CountOn(ctx, symbol, day)
}

func (m *Multi) Records(ctx context.Context, symbol string) ([]models.TradeRecord, error) {
	return m.primary.Records(ctx, symbol)
}

func (m *Multi) Symbols(ctx context.Context) ([]string, error) {
	return m.primary.Symbols(ctx)
}

func (m *Multi) Close() error {
	err := m.primary.Close()
	for _, l := range m.mirrors {
		err = multierr.Append(err, l.Close())
	}
	return err
}
