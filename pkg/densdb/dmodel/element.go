package dmodel

import (
	"strings"
	"time"
)

type Element struct {
	ID           int       `json:"id"`
	UUID         string    `json:"uuid" gorm:"size:64"`
	Name         string    `json:"name" gorm:"size:64;uniqueIndex"`
	Symbol       string    `json:"symbol" gorm:"size:8;uniqueIndex"`
	AtomicNumber int       `json:"atomic_number" gorm:"uniqueIndex"`
	Density      float64   `json:"density"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeSymbol turns " al", "AL" and "Al" into "Al".
func NormalizeSymbol(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return ""
	}

	return strings.ToUpper(symbol[:1]) + strings.ToLower(symbol[1:])
}
