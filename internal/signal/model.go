package signal

import (
	"signal_bot/internal/models"

	"github.com/pkg/errors"
)

const DefaultMinExamples = 30

// Classifier: вероятностный бинарный классификатор.
type Classifier interface {
	Fit(x [][]float64, y []int) error
	PredictProba(x []float64) (float64, error)
}

// Model каждый раз создаёт новый классификатор: между циклами
// ничего не хранится.
type Model struct {
	NewClassifier func() Classifier
	MinExamples   int
}

func NewModel(minExamples int) *Model {
	if minExamples <= 0 {
		minExamples = DefaultMinExamples
	}
	return &Model{
		NewClassifier: func() Classifier { return NewLogistic() },
		MinExamples:   minExamples,
	}
}

// Predict обучает модель на train и возвращает метку для latest.
func (m *Model) Predict(train []models.Example, latest models.FeatureVector) (int, error) {
	if len(train) < m.MinExamples {
		return 0, errors.Wrapf(models.ErrInsufficientData, "%d examples, need %d", len(train), m.MinExamples)
	}

	x := make([][]float64, len(train))
	y := make([]int, len(train))
	for i, ex := range train {
		x[i] = ex.Features.Values()
		y[i] = ex.Label
	}

	clf := m.NewClassifier()
	if err := clf.Fit(x, y); err != nil {
		return 0, errors.Wrap(err, "fit classifier")
	}
	p, err := clf.PredictProba(latest.Values())
	if err != nil {
		return 0, errors.Wrap(err, "predict")
	}
	if p >= 0.5 {
		return models.LabelUp, nil
	}
	return models.LabelDown, nil
}
