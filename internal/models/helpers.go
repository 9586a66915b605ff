package models

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

func NewSessionID() string {
	return uuid.NewString()
}

// NewIdempotencyKey returns a client-generated token attached to transaction
// creation so that a manual resubmission can be recognised remotely.
func NewIdempotencyKey() string {
	return "tx_" + uuid.NewString()
}

// FormatRubles renders an amount with two decimals and the ruble sign.
func FormatRubles(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64) + " ₽"
}

// ParseAmount accepts "1000", "1000₽", "1 000" and "1000,50".
func ParseAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "₽")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}
