package universe

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Load читает список символов: CSV с колонкой symbol или YAML
// вида `symbols: [...]`. Результат уже отфильтрован.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open universe %s", path)
	}
	defer f.Close()

	var raw []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = readYAML(f)
	default:
		raw, err = readCSV(f)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "universe %s", path)
	}
	return Filter(raw), nil
}

type yamlUniverse struct {
	Symbols []string `yaml:"symbols"`
}

func readYAML(r io.Reader) ([]string, error) {
	var u yamlUniverse
	if err := yaml.NewDecoder(r).Decode(&u); err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}
	return u.Symbols, nil
}

func readCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "symbol") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, errors.New("no symbol column")
	}

	var out []string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "read row")
		}
		if col < len(row) {
			out = append(out, row[col])
		}
	}
}

// Filter убирает пустые, дубли и тикеры с '.' или '-' (классы акций,
// которые брокер не принимает в этом виде). Порядок сохраняется.
func Filter(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || strings.ContainsAny(s, ".-") {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
