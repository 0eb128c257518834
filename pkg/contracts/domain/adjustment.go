package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the compact date format used by map and factor files
const DateLayout = "20060102"

// FarFuture is the sentinel date meaning "no further adjustment" or "still active"
var FarFuture = time.Date(2049, time.December, 31, 0, 0, 0, 0, time.UTC)

// MapSegment asserts that Symbol identified the instrument from Date onwards
type MapSegment struct {
	Date   time.Time `json:"date"`
	Symbol string    `json:"symbol"`
}

// FactorPoint is the cumulative multiplier for prices dated on or before Date
type FactorPoint struct {
	Date        time.Time       `json:"date"`
	PriceFactor decimal.Decimal `json:"price_factor"`
	SplitFactor decimal.Decimal `json:"split_factor"`
}

// Combined returns PriceFactor * SplitFactor
func (p FactorPoint) Combined() decimal.Decimal {
	return p.PriceFactor.Mul(p.SplitFactor)
}

// SentinelPoint returns the terminal (FarFuture, 1, 1) factor point
func SentinelPoint() FactorPoint {
	return FactorPoint{Date: FarFuture, PriceFactor: decimal.NewFromInt(1), SplitFactor: decimal.NewFromInt(1)}
}

// StructuralKind tags share-count events
type StructuralKind string

const (
	StructuralSplit   StructuralKind = "split"
	StructuralBonus   StructuralKind = "bonus"
	StructuralExclude StructuralKind = "merger-exclude"
)

// EventKind discriminates CorporateEvent variants
type EventKind int

const (
	EventDividend EventKind = iota
	EventStructural
)

// Dividend is a cash distribution with the reference price used to compute its factor
type Dividend struct {
	Date           time.Time
	Amount         decimal.Decimal
	ReferencePrice decimal.Decimal
}

// StructuralEvent is a split, bonus or excluded merger expressed as a ratio
type StructuralEvent struct {
	Date        time.Time
	Numerator   decimal.Decimal
	Denominator decimal.Decimal
	Kind        StructuralKind
}

// Ratio returns Numerator/Denominator rounded to 16 places
func (e StructuralEvent) Ratio() decimal.Decimal {
	if e.Denominator.IsZero() {
		return decimal.Zero
	}
	return e.Numerator.DivRound(e.Denominator, 16)
}

// CorporateEvent is a tagged union of Dividend and StructuralEvent
type CorporateEvent struct {
	Kind       EventKind
	Dividend   Dividend
	Structural StructuralEvent
}

// Date returns the effective date of whichever variant is set
func (e CorporateEvent) Date() time.Time {
	if e.Kind == EventDividend {
		return e.Dividend.Date
	}
	return e.Structural.Date
}

// NewDividendEvent wraps a Dividend
func NewDividendEvent(d Dividend) CorporateEvent {
	return CorporateEvent{Kind: EventDividend, Dividend: d}
}

// NewStructuralEvent wraps a StructuralEvent
func NewStructuralEvent(s StructuralEvent) CorporateEvent {
	return CorporateEvent{Kind: EventStructural, Structural: s}
}

// EventRows is the raw text of an issuer's corporate-action tables as delivered
// by an event source. Dividend rows are [approval, amount, class, lastWith,
// exDate, refPrice]; structural rows are [kind, approval, exDate, _, ratio].
type EventRows struct {
	Dividends  [][]string `json:"dividends"`
	Structural [][]string `json:"structural"`
}

// Empty reports whether no rows were delivered
func (r EventRows) Empty() bool {
	return len(r.Dividends) == 0 && len(r.Structural) == 0
}
