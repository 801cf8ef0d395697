package runner

import "signal_bot/internal/models"

// DefaultBand: расстояние SL/TP от опорной цены.
const DefaultBand = 0.02

// calcProtective: для buy стоп ниже, тейк выше; для sell наоборот.
// Цены не округляются, до центов их доводит адаптер брокера.
func calcProtective(action models.Action, ref, band float64) (stopLoss, takeProfit float64) {
	if action == models.ActionBuy {
		return ref * (1 - band), ref * (1 + band)
	}
	return ref * (1 + band), ref * (1 - band)
}
