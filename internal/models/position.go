package models

// Position как её отдаёт брокер. Qty со знаком: short < 0.
type Position struct {
	Symbol        string
	Qty           float64
	AvgEntryPrice float64
}

func (p Position) IsOpen() bool { return p.Qty != 0 }
