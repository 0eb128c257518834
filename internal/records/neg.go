package records

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/files"
	"bovespacli/pkg/contracts/domain"
)

// NEGSchema is the intraday trade file layout
var NEGSchema = &DelimitedSchema{
	Name:      "NEG",
	Delimiter: ";",
	Columns: []Column{
		{Name: "date", Index: 0, Kind: KindDate},
		{Name: "ticker", Index: 1},
		{Name: "price", Index: 3, Kind: KindDecimal},
		{Name: "quantity", Index: 4, Kind: KindInt},
		{Name: "time", Index: 5},
	},
}

// Trade is one decoded intraday trade
type Trade struct {
	Date   time.Time
	Symbol string
	Tick   domain.TickRecord
}

var priceScale = decimal.NewFromInt(domain.PriceScale)

// DecodeNEG decodes one trade line
func DecodeNEG(line string) (Trade, error) {
	fields, err := NEGSchema.Decode(line)
	if err != nil {
		return Trade{}, err
	}
	millis, err := ParseTimeOfDay(fields.Text("time"))
	if err != nil {
		return Trade{}, err
	}
	return Trade{
		Date:   fields.Date("date"),
		Symbol: strings.ToUpper(fields.Text("ticker")),
		Tick: domain.TickRecord{
			TimeOfDayMillis: millis,
			Price:           fields.Decimal("price").Mul(priceScale).RoundBank(0).IntPart(),
			Quantity:        fields.Int("quantity"),
		},
	}, nil
}

// ReadNEG decodes a trade file, keeping arrival order. The header line and
// any other undecodable line are returned as rejects.
func ReadNEG(path string) ([]Trade, []error, error) {
	lines, err := files.ReadLines(path)
	if err != nil {
		return nil, nil, apperrors.NewMissingInputError(path, err)
	}

	var (
		trades  []Trade
		rejects []error
	)
	for i, line := range lines {
		t, err := DecodeNEG(line)
		if err != nil {
			rejects = append(rejects, apperrors.NewMalformedRecordError(fmt.Sprintf("%s:%d", path, i+1), "invalid trade record", err))
			continue
		}
		trades = append(trades, t)
	}
	return trades, rejects, nil
}

// ParseTimeOfDay converts "HH:MM:SS[.fff]" to milliseconds since midnight
func ParseTimeOfDay(s string) (int64, error) {
	t, err := time.Parse("15:04:05.999999999", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return int64(t.Hour())*3_600_000 + int64(t.Minute())*60_000 + int64(t.Second())*1_000 +
		int64(t.Nanosecond()/1_000_000), nil
}
