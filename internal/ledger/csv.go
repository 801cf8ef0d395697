package ledger

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"

	"github.com/pkg/errors"
)

const journalSuffix = "_trades_log.csv"

var journalHeader = []string{"timestamp", "symbol", "action", "price", "prediction", "qty"}

// legacyFields: журналы старого формата без колонки qty. Такие строки
// читаются с qty = 0, новые дописываются в полном формате.
const legacyFields = 5

// Journal: по CSV-файлу на символ: <dir>/<SYMBOL>_trades_log.csv.
// Заголовок пишется при первой записи.
type Journal struct {
	dir string
}

func NewJournal(dir string) (*Journal, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create journal dir %s", dir)
	}
	return &Journal{dir: dir}, nil
}

func (j *Journal) path(symbol string) string {
	return filepath.Join(j.dir, symbol+journalSuffix)
}

func (j *Journal) Append(_ context.Context, rec models.TradeRecord) error {
	p := j.path(rec.Symbol)
	_, statErr := os.Stat(p)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open journal %s", p)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(journalHeader); err != nil {
			return errors.Wrap(err, "write header")
		}
	}
	row := []string{
		formatTime(rec.Timestamp),
		rec.Symbol,
		string(rec.Action),
		strconv.FormatFloat(rec.Price, 'f', -1, 64),
		strconv.Itoa(rec.Prediction),
		strconv.FormatInt(rec.Quantity, 10),
	}
	if err := w.Write(row); err != nil {
		return errors.Wrap(err, "write row")
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "flush journal %s", p)
}

func (j *Journal) Records(_ context.Context, symbol string) ([]models.TradeRecord, error) {
	f, err := os.Open(j.path(symbol))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open journal for %s", symbol)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var out []models.TradeRecord
	for line := 1; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read journal %s", symbol)
		}
		if line == 1 && row[0] == journalHeader[0] {
			continue
		}
		if len(row) != len(journalHeader) && len(row) != legacyFields {
			return nil, errors.Errorf("journal %s line %d: %d fields", symbol, line, len(row))
		}
		rec, err := parseRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "journal %s line %d", symbol, line)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (j *Journal) CountOn(ctx context.Context, symbol string, day time.Time) (int, error) {
	recs, err := j.Records(ctx, symbol)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range recs {
		if helper.InDay(r.Timestamp, day) {
			n++
		}
	}
	return n, nil
}

func (j *Journal) Symbols(context.Context) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(j.dir, "*"+journalSuffix))
	if err != nil {
		return nil, errors.Wrap(err, "glob journals")
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSuffix(filepath.Base(m), journalSuffix))
	}
	sort.Strings(out)
	return out, nil
}

func (j *Journal) Close() error { return nil }

func parseRow(row []string) (models.TradeRecord, error) {
	ts, err := parseTime(row[0])
	if err != nil {
		return models.TradeRecord{}, errors.Wrap(err, "timestamp")
	}
	action, err := models.ParseAction(row[2])
	if err != nil {
		return models.TradeRecord{}, err
	}
	price, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return models.TradeRecord{}, errors.Wrap(err, "price")
	}
	pred, err := strconv.Atoi(row[4])
	if err != nil {
		return models.TradeRecord{}, errors.Wrap(err, "prediction")
	}
	var qty int64
	if len(row) > legacyFields {
		if qty, err = strconv.ParseInt(row[5], 10, 64); err != nil {
			return models.TradeRecord{}, errors.Wrap(err, "qty")
		}
	}
	return models.TradeRecord{
		Timestamp:  ts,
		Symbol:     row[1],
		Action:     action,
		Price:      price,
		Prediction: pred,
		Quantity:   qty,
	}, nil
}
