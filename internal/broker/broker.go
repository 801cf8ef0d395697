package broker

import (
	"context"

	"signal_bot/internal/models"
)

// Broker: счёт, котировки и заявки.
type Broker interface {
	BuyingPower(ctx context.Context) (float64, error)
	LastPrice(ctx context.Context, symbol string) (float64, error)
	ListOpenPositions(ctx context.Context) ([]models.Position, error)
	// SubmitBracketOrder возвращает id заявки у брокера.
	SubmitBracketOrder(ctx context.Context, order models.BracketOrder) (string, error)
}
