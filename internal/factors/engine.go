package factors

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	apperrors "bovespacli/internal/errors"
	"bovespacli/pkg/contracts/domain"
)

// Precision is the number of fractional digits kept in factor files
const Precision = 9

var one = decimal.NewFromInt(1)

// Compute derives the cumulative factor series from an issuer's corporate events.
//
// Dividends on one date are summed against the first reference price seen for
// it. Structural events on one date keep the last one given. Both factors at a
// date are the product of every event dated on or after it, so a date carrying
// only one kind of event borrows the other factor from the nearest later date.
// Issues lists events that were dropped.
func Compute(source string, events []domain.CorporateEvent) ([]domain.FactorPoint, []error) {
	var (
		issues     []error
		dividends  []domain.Dividend
		structural []domain.StructuralEvent
	)
	for _, e := range events {
		switch e.Kind {
		case domain.EventDividend:
			dividends = append(dividends, e.Dividend)
		case domain.EventStructural:
			structural = append(structural, e.Structural)
		}
	}

	divFactor := dividendFactors(source, dividends, &issues)
	splitFactor := structuralFactors(source, structural, &issues)

	keys := map[time.Time]struct{}{domain.FarFuture: {}}
	for d := range divFactor {
		keys[d] = struct{}{}
	}
	for d := range splitFactor {
		keys[d] = struct{}{}
	}
	dates := make([]time.Time, 0, len(keys))
	for d := range keys {
		if d.After(domain.FarFuture) {
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]domain.FactorPoint, len(dates))
	price, split := one, one
	for i := len(dates) - 1; i >= 0; i-- {
		d := dates[i]
		if f, ok := divFactor[d]; ok {
			price = price.Mul(f)
		}
		if r, ok := splitFactor[d]; ok {
			split = split.Mul(r)
		}
		out[i] = domain.FactorPoint{
			Date:        d,
			PriceFactor: price.RoundBank(Precision),
			SplitFactor: split.RoundBank(Precision),
		}
	}
	return out, issues
}

func dividendFactors(source string, dividends []domain.Dividend, issues *[]error) map[time.Time]decimal.Decimal {
	amount := make(map[time.Time]decimal.Decimal)
	ref := make(map[time.Time]decimal.Decimal)
	for _, d := range dividends {
		if !d.ReferencePrice.IsPositive() {
			*issues = append(*issues, apperrors.NewNonPositiveError(source, "reference price", d.ReferencePrice).
				WithContext("date", d.Date.Format(domain.DateLayout)))
			continue
		}
		if _, ok := ref[d.Date]; !ok {
			ref[d.Date] = d.ReferencePrice
		}
		amount[d.Date] = amount[d.Date].Add(d.Amount)
	}

	out := make(map[time.Time]decimal.Decimal, len(amount))
	for date, a := range amount {
		f := one.Sub(a.DivRound(ref[date], 16))
		if !f.IsPositive() {
			*issues = append(*issues, apperrors.NewNonPositiveError(source, "dividend factor", f).
				WithContext("date", date.Format(domain.DateLayout)))
			continue
		}
		out[date] = f
	}
	return out
}

func structuralFactors(source string, events []domain.StructuralEvent, issues *[]error) map[time.Time]decimal.Decimal {
	out := make(map[time.Time]decimal.Decimal)
	for _, e := range events {
		if e.Kind == domain.StructuralExclude {
			continue
		}
		r := e.Ratio()
		if !r.IsPositive() {
			*issues = append(*issues, apperrors.NewInvalidRatioError(source, r.String()).
				WithContext("date", e.Date.Format(domain.DateLayout)))
			continue
		}
		out[e.Date] = r
	}
	return out
}
