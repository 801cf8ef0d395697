package signal

import (
	"time"

	"signal_bot/internal/models"

	"github.com/pkg/errors"
)

// BuildExamples сопоставляет каждому вектору направление следующей свечи.
// Вектор последней свечи метки не имеет: он возвращается как вход для
// предсказания и в обучающую выборку не попадает.
func BuildExamples(bars []models.Bar, vectors []models.FeatureVector) ([]models.Example, models.FeatureVector, error) {
	if len(vectors) == 0 {
		return nil, models.FeatureVector{}, errors.Wrap(models.ErrInsufficientData, "no feature vectors")
	}

	idx := make(map[time.Time]int, len(bars))
	for i, b := range bars {
		idx[b.Time] = i
	}

	latest := vectors[len(vectors)-1]
	if i, ok := idx[latest.Time]; !ok || i != len(bars)-1 {
		return nil, models.FeatureVector{}, errors.Wrap(models.ErrInsufficientData, "latest bar has no feature vector")
	}

	train := make([]models.Example, 0, len(vectors)-1)
	for _, v := range vectors[:len(vectors)-1] {
		i, ok := idx[v.Time]
		if !ok || i+1 >= len(bars) {
			return nil, models.FeatureVector{}, errors.Errorf("feature vector at %s has no bar", v.Time)
		}
		train = append(train, models.Example{
			Features: v,
			Label:    label(bars[i], bars[i+1]),
		})
	}
	return train, latest, nil
}

func label(cur, next models.Bar) int {
	if next.Close > cur.Close {
		return models.LabelUp
	}
	return models.LabelDown
}
