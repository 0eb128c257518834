package factors

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "bovespacli/internal/errors"
	"bovespacli/pkg/contracts/domain"
)

const rowDateLayout = "02/01/2006"

// mergerMarker tags spin-off rows, which never adjust the surviving series
const mergerMarker = "Cisão"

// DividendRow is a parsed cash distribution with the share class it pays
type DividendRow struct {
	Class    string
	Dividend domain.Dividend
}

// ParseDividendRow parses [approval, amount, class, lastWith, exDate, refPrice].
// The effective date is the first parsable of exDate, lastWith and approval.
func ParseDividendRow(source string, cols []string) (DividendRow, error) {
	if len(cols) < 6 {
		return DividendRow{}, apperrors.NewMalformedRecordError(source,
			fmt.Sprintf("dividend row has %d columns, need 6", len(cols)), nil)
	}

	ref, err := ParseNumber(cols[5])
	if err != nil {
		return DividendRow{}, apperrors.NewMalformedRecordError(source, "invalid reference price", err)
	}
	if !ref.IsPositive() {
		return DividendRow{}, apperrors.NewNonPositiveError(source, "reference price", ref)
	}

	date, ok := firstDate(cols[4], cols[3], cols[0])
	if !ok {
		return DividendRow{}, apperrors.NewMalformedRecordError(source, "dividend row has no valid date", nil)
	}

	amount, err := ParseNumber(cols[1])
	if err != nil {
		return DividendRow{}, apperrors.NewMalformedRecordError(source, "invalid dividend amount", err)
	}
	if amount.IsNegative() {
		return DividendRow{}, apperrors.NewNonPositiveError(source, "dividend amount", amount)
	}

	return DividendRow{
		Class:    strings.ToUpper(strings.TrimSpace(cols[2])),
		Dividend: domain.Dividend{Date: date, Amount: amount, ReferencePrice: ref},
	}, nil
}

// ParseStructuralRow parses [kind, approval, exDate, _, ratio]. The ratio is
// either a percentage bonus ("10" means 1/1.1) or a fraction "a/b". A non-nil
// override replaces fractional ratios for the issuer.
func ParseStructuralRow(source string, cols []string, override *decimal.Decimal) (domain.StructuralEvent, error) {
	for _, c := range cols {
		if strings.Contains(c, mergerMarker) {
			return domain.StructuralEvent{Kind: domain.StructuralExclude}, nil
		}
	}
	if len(cols) < 5 {
		return domain.StructuralEvent{}, apperrors.NewMalformedRecordError(source,
			fmt.Sprintf("event row has %d columns, need 5", len(cols)), nil)
	}

	date, ok := firstDate(cols[2], cols[1])
	if !ok {
		return domain.StructuralEvent{}, apperrors.NewMalformedRecordError(source, "event row has no valid date", nil)
	}

	raw := strings.TrimSpace(cols[4])
	parts := strings.Split(raw, "/")
	first, err := ParseNumber(parts[0])
	if err != nil || !first.IsPositive() || len(parts) > 2 {
		return domain.StructuralEvent{}, apperrors.NewInvalidRatioError(source, raw)
	}

	ev := domain.StructuralEvent{Date: date}
	if len(parts) == 1 {
		ev.Kind = domain.StructuralBonus
		ev.Numerator = decimal.NewFromInt(1)
		ev.Denominator = decimal.NewFromInt(1).Add(first.Div(decimal.NewFromInt(100)))
		return ev, nil
	}

	den, err := ParseNumber(parts[1])
	if err != nil || !den.IsPositive() {
		return domain.StructuralEvent{}, apperrors.NewInvalidRatioError(source, raw)
	}
	ev.Kind = domain.StructuralSplit
	ev.Numerator, ev.Denominator = first, den
	if override != nil {
		ev.Numerator, ev.Denominator = *override, decimal.NewFromInt(1)
	}
	return ev, nil
}

// ParseNumber reads a pt-BR formatted number: "." groups thousands, "," marks decimals.
// A "." after the decimal comma is an en-US number and is rejected.
func ParseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if c := strings.IndexByte(s, ','); c >= 0 && strings.Contains(s[c+1:], ".") {
		return decimal.Decimal{}, fmt.Errorf("invalid pt-BR number %q", s)
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	return decimal.NewFromString(s)
}

func firstDate(candidates ...string) (time.Time, bool) {
	for _, c := range candidates {
		if d, err := time.Parse(rowDateLayout, strings.TrimSpace(c)); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
