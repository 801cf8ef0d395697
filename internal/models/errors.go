package models

import "github.com/pkg/errors"

// Ошибки цикла по символу. Все локальны: следующий символ и следующий
// проход планировщика выполняются в любом случае.
var (
	ErrNoData           = errors.New("no price data")
	ErrInsufficientData = errors.New("insufficient labeled examples")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrSubmission       = errors.New("order submission failed")
	ErrNotification     = errors.New("notification failed")
)
