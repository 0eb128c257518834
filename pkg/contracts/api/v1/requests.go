// Package api contains the query API contract.
// Dates travel as YYYYMMDD strings, factors as decimal strings.
package api

import (
	"strings"
	"time"

	"bovespacli/pkg/contracts/domain"
)

// SymbolRequest names one instrument
type SymbolRequest struct {
	Symbol string `json:"symbol" validate:"required,min=4,max=12,alphanum"`
}

// DateRequest is the optional ?date= parameter of lookups
type DateRequest struct {
	Date string `json:"date" query:"date" validate:"omitempty,len=8,numeric"`
}

// CalendarRequest selects a span of trading days
type CalendarRequest struct {
	From string `json:"from" query:"from" validate:"omitempty,len=8,numeric"`
	To   string `json:"to" query:"to" validate:"omitempty,len=8,numeric"`
}

// InstrumentsRequest filters the instrument list
type InstrumentsRequest struct {
	Type string `json:"type" query:"type" validate:"omitempty,oneof=equity option future"`
}

// ParseDate parses an optional YYYYMMDD value. Empty yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(domain.DateLayout, s)
}
