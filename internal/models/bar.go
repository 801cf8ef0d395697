package models

import "time"

// Bar: одна свеча по символу.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// FeatureVector привязан к конкретной свече (Time).
type FeatureVector struct {
	Time time.Time
	SMA  float64
	RSI  float64
	MACD float64
}

// Values порядок совпадает с порядком признаков при обучении.
func (v FeatureVector) Values() []float64 {
	return []float64{v.SMA, v.RSI, v.MACD}
}

// Example: обучающая пара (признаки свечи, направление следующей свечи).
type Example struct {
	Features FeatureVector
	Label    int
}

const (
	LabelDown = 0
	LabelUp   = 1
)
