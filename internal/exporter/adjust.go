package exporter

import (
	"time"

	"github.com/shopspring/decimal"

	"bovespacli/internal/bars"
	"bovespacli/internal/factors"
	"bovespacli/pkg/contracts/domain"
)

var priceScale = decimal.NewFromInt(domain.PriceScale)

// Adjuster applies a factor series to raw fixed-point prices
type Adjuster struct {
	points []domain.FactorPoint
}

// NewAdjuster wraps a factor series. An empty series adjusts nothing.
func NewAdjuster(points []domain.FactorPoint) *Adjuster {
	if len(points) == 0 {
		points = []domain.FactorPoint{domain.SentinelPoint()}
	}
	return &Adjuster{points: points}
}

// Factor returns the combined multiplier for prices dated d
func (a *Adjuster) Factor(d time.Time) decimal.Decimal {
	return factors.Lookup(a.points, d).Combined()
}

// Price converts a raw price dated d to an adjusted currency amount rounded to two places
func (a *Adjuster) Price(raw int64, d time.Time) decimal.Decimal {
	return adjust(raw, a.Factor(d))
}

func adjust(raw int64, factor decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(raw).Mul(factor).Div(priceScale).RoundBank(2)
}

// DailyRow renders SYMBOL;dd/MM/yyyy;O;H;L;C;VOLUME
func (a *Adjuster) DailyRow(l Locale, symbol string, r domain.DailyRecord) []string {
	f := a.Factor(r.Date)
	return []string{
		symbol,
		formatDate(r.Date),
		l.FormatPrice(adjust(r.Open, f)),
		l.FormatPrice(adjust(r.High, f)),
		l.FormatPrice(adjust(r.Low, f)),
		l.FormatPrice(adjust(r.Close, f)),
		formatInt(r.Volume),
	}
}

// BarRows renders SYMBOL;dd/MM/yyyy;HH:mm:ss;O;H;L;C;VOLUME;NOTIONAL for each bar of a day
func (a *Adjuster) BarRows(l Locale, day bars.Day) [][]string {
	f := a.Factor(day.Date)
	date := formatDate(day.Date)
	rows := make([][]string, len(day.Bars))
	for i, b := range day.Bars {
		rows[i] = []string{
			day.Symbol,
			date,
			formatTimeOfDay(b.BucketKey),
			l.FormatPrice(adjust(b.Open, f)),
			l.FormatPrice(adjust(b.High, f)),
			l.FormatPrice(adjust(b.Low, f)),
			l.FormatPrice(adjust(b.Close, f)),
			formatInt(b.Volume),
			l.FormatPrice(b.Notional),
		}
	}
	return rows
}
