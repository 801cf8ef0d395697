package marketdata

import (
	"context"
	"sort"

	"signal_bot/internal/models"
)

// Source отдаёт последние свечи по символу, от старых к новым.
type Source interface {
	RecentBars(ctx context.Context, symbol string, limit int) ([]models.Bar, error)
}

// normalize сортирует по времени, убирает дубли и оставляет хвост limit.
func normalize(bars []models.Bar, limit int) []models.Bar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	out := bars[:0]
	for i, b := range bars {
		if i > 0 && b.Time.Equal(out[len(out)-1].Time) {
			// при дубле берём более позднюю версию свечи
			out[len(out)-1] = b
			continue
		}
		out = append(out, b)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
