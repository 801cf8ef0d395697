package signal

import (
	"math"

	"github.com/pkg/errors"
)

// Logistic: L2-регуляризованная логистическая регрессия, полный батч.
// Признаки стандартизируются по обучающей выборке, веса стартуют с нуля,
// поэтому результат детерминирован.
type Logistic struct {
	Epochs       int
	LearningRate float64
	L2           float64

	w     []float64
	b     float64
	mean  []float64
	scale []float64
}

func NewLogistic() *Logistic {
	return &Logistic{Epochs: 500, LearningRate: 0.1, L2: 1e-3}
}

func (m *Logistic) Fit(x [][]float64, y []int) error {
	if len(x) == 0 {
		return errors.New("empty training set")
	}
	if len(x) != len(y) {
		return errors.Errorf("features/labels length mismatch: %d != %d", len(x), len(y))
	}
	dim := len(x[0])
	for i, row := range x {
		if len(row) != dim {
			return errors.Errorf("row %d has %d features, want %d", i, len(row), dim)
		}
	}

	m.fitScaler(x, dim)
	xs := make([][]float64, len(x))
	for i, row := range x {
		xs[i] = m.standardize(row)
	}

	m.w = make([]float64, dim)
	m.b = 0
	n := float64(len(xs))
	gW := make([]float64, dim)
	for e := 0; e < m.Epochs; e++ {
		for j := range gW {
			gW[j] = 0
		}
		var gB float64
		for i, row := range xs {
			grad := m.raw(row) - float64(y[i])
			for j := range row {
				gW[j] += grad * row[j]
			}
			gB += grad
		}
		for j := range m.w {
			m.w[j] -= m.LearningRate * (gW[j]/n + m.L2*m.w[j])
		}
		m.b -= m.LearningRate * gB / n
	}
	return nil
}

func (m *Logistic) PredictProba(x []float64) (float64, error) {
	if m.w == nil {
		return 0, errors.New("model is not fitted")
	}
	if len(x) != len(m.w) {
		return 0, errors.Errorf("got %d features, want %d", len(x), len(m.w))
	}
	return m.raw(m.standardize(x)), nil
}

func (m *Logistic) raw(x []float64) float64 {
	z := m.b
	for j := range x {
		z += m.w[j] * x[j]
	}
	return sigmoid(z)
}

func (m *Logistic) fitScaler(x [][]float64, dim int) {
	m.mean = make([]float64, dim)
	m.scale = make([]float64, dim)
	n := float64(len(x))
	for _, row := range x {
		for j, v := range row {
			m.mean[j] += v
		}
	}
	for j := range m.mean {
		m.mean[j] /= n
	}
	for _, row := range x {
		for j, v := range row {
			d := v - m.mean[j]
			m.scale[j] += d * d
		}
	}
	for j := range m.scale {
		s := math.Sqrt(m.scale[j] / n)
		if s < 1e-12 {
			s = 1
		}
		m.scale[j] = s
	}
}

func (m *Logistic) standardize(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - m.mean[j]) / m.scale[j]
	}
	return out
}

// sigmoid с отсечкой, чтобы exp не переполнялся.
func sigmoid(z float64) float64 {
	if z > 20 {
		return 1
	}
	if z < -20 {
		return 0
	}
	return 1 / (1 + math.Exp(-z))
}
