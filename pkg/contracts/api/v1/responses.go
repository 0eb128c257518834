package api

import (
	"time"

	"bovespacli/pkg/contracts/domain"
)

// InstrumentResponse is one registry entry
type InstrumentResponse struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

// InstrumentsResponse lists registry entries
type InstrumentsResponse struct {
	Count       int                  `json:"count"`
	Instruments []InstrumentResponse `json:"instruments"`
}

// MapRowResponse is one map file row
type MapRowResponse struct {
	Date   string `json:"date"`
	Symbol string `json:"symbol"`
}

// MapResponse is a whole map file
type MapResponse struct {
	Symbol string           `json:"symbol"`
	Rows   []MapRowResponse `json:"rows"`
}

// ResolveResponse names the ticker an instrument traded under on a date
type ResolveResponse struct {
	Symbol   string `json:"symbol"`
	Date     string `json:"date"`
	TradedAs string `json:"traded_as"`
}

// FactorRowResponse is one factor file row
type FactorRowResponse struct {
	Date        string `json:"date"`
	PriceFactor string `json:"price_factor"`
	SplitFactor string `json:"split_factor"`
	Combined    string `json:"combined"`
}

// FactorsResponse is a factor series, or the single point in force on Date
type FactorsResponse struct {
	Symbol string              `json:"symbol"`
	Date   string              `json:"date,omitempty"`
	Rows   []FactorRowResponse `json:"rows"`
}

// CalendarResponse lists trading days
type CalendarResponse struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Count int      `json:"count"`
	Days  []string `json:"days"`
}

// FormatDate renders a date the way every contract field carries it
func FormatDate(d time.Time) string {
	return d.Format(domain.DateLayout)
}

// NewMapResponse converts map file rows
func NewMapResponse(symbol string, rows []domain.MapSegment) MapResponse {
	out := MapResponse{Symbol: symbol, Rows: make([]MapRowResponse, len(rows))}
	for i, r := range rows {
		out.Rows[i] = MapRowResponse{Date: FormatDate(r.Date), Symbol: r.Symbol}
	}
	return out
}

// NewFactorRow converts one factor point
func NewFactorRow(p domain.FactorPoint) FactorRowResponse {
	return FactorRowResponse{
		Date:        FormatDate(p.Date),
		PriceFactor: p.PriceFactor.String(),
		SplitFactor: p.SplitFactor.String(),
		Combined:    p.Combined().String(),
	}
}
