package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceScale is the fixed-point multiplier used for every stored price.
// A stored value of 123400 is 12.34 in currency units.
const PriceScale = 10000

// Resolution is the output bar width
type Resolution string

const (
	ResolutionDaily  Resolution = "daily"
	ResolutionHour   Resolution = "hour"
	ResolutionMinute Resolution = "minute"
	ResolutionSecond Resolution = "second"
)

// Width returns the bucket width in milliseconds. Daily resolution spans the whole day.
func (r Resolution) Width() int64 {
	switch r {
	case ResolutionHour:
		return 3_600_000
	case ResolutionMinute:
		return 60_000
	case ResolutionSecond:
		return 1_000
	default:
		return 86_400_000
	}
}

// Intraday reports whether bars of this resolution carry a time of day
func (r Resolution) Intraday() bool {
	return r == ResolutionHour || r == ResolutionMinute || r == ResolutionSecond
}

// DailyRecord is one raw daily bar with prices scaled by PriceScale
type DailyRecord struct {
	Date   time.Time `json:"date"`
	Open   int64     `json:"open"`
	High   int64     `json:"high"`
	Low    int64     `json:"low"`
	Close  int64     `json:"close"`
	Volume int64     `json:"volume"`
}

// TickRecord is one trade or quote inside a trading day
type TickRecord struct {
	TimeOfDayMillis int64 `json:"time_ms"`
	Price           int64 `json:"price"`
	Quantity        int64 `json:"quantity"`
}

// Bar is an aggregated bucket of ticks. BucketKey is milliseconds since midnight.
type Bar struct {
	BucketKey int64           `json:"t"`
	Open      int64           `json:"o"`
	High      int64           `json:"h"`
	Low       int64           `json:"l"`
	Close     int64           `json:"c"`
	Volume    int64           `json:"v"`
	Notional  decimal.Decimal `json:"n"`
}
