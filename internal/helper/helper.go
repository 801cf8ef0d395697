package helper

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NormTF приводит таймфрейм к виду "1m"/"5m"/"15m"/"1h"/"1d".
func NormTF(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	switch s {
	case "", "1m", "1min", "minute":
		return "1m"
	case "5m", "5min":
		return "5m"
	case "15m", "15min":
		return "15m"
	case "60m", "1h", "1hour", "hour":
		return "1h"
	case "1d", "1day", "day":
		return "1d"
	default:
		return s
	}
}

// AlpacaTF: таймфрейм в формате Alpaca Market Data API.
func AlpacaTF(tf string) string {
	switch NormTF(tf) {
	case "5m":
		return "5Min"
	case "15m":
		return "15Min"
	case "1h":
		return "1Hour"
	case "1d":
		return "1Day"
	default:
		return "1Min"
	}
}

// DayBounds: [начало дня, начало следующего дня) в зоне t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// InDay: попадает ли ts в календарный день day (в зоне day).
func InDay(ts, day time.Time) bool {
	start, end := DayBounds(day)
	return !ts.Before(start) && ts.Before(end)
}

// RoundPrice округляет до центов для отправки брокеру.
func RoundPrice(px float64) string {
	return decimal.NewFromFloat(px).Round(2).StringFixed(2)
}
