package records

import (
	"fmt"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/files"
	"bovespacli/internal/instruments"
	"bovespacli/pkg/contracts/domain"
)

// cotahistPriceScale lifts COTAHIST's two implied decimals to PriceScale
const cotahistPriceScale = domain.PriceScale / 100

// COTAHISTSchema is the daily quotation layout. Only record type 01 carries quotes.
var COTAHISTSchema = MustFixedWidthSchema("COTAHIST",
	Field{Name: "record_type", Start: 0, End: 2},
	Field{Name: "date", Start: 2, End: 10, Kind: KindDate},
	Field{Name: "ticker", Start: 12, End: 24},
	Field{Name: "open", Start: 56, End: 69, Kind: KindInt},
	Field{Name: "high", Start: 69, End: 82, Kind: KindInt},
	Field{Name: "low", Start: 82, End: 95, Kind: KindInt},
	Field{Name: "close", Start: 108, End: 121, Kind: KindInt},
	Field{Name: "volume", Start: 152, End: 170, Kind: KindInt},
)

// Quote is one decoded daily record with its ticker
type Quote struct {
	Symbol string
	Daily  domain.DailyRecord
}

// DecodeCOTAHIST decodes one line. ok is false for header/trailer records and
// tickers outside the equity share classes.
func DecodeCOTAHIST(line string) (Quote, bool, error) {
	if len(line) < 2 || line[:2] != "01" {
		return Quote{}, false, nil
	}
	fields, err := COTAHISTSchema.Decode(line)
	if err != nil {
		return Quote{}, false, err
	}
	symbol := fields.Text("ticker")
	if !instruments.ValidateSymbol(symbol) {
		return Quote{}, false, nil
	}
	return Quote{
		Symbol: symbol,
		Daily: domain.DailyRecord{
			Date:   fields.Date("date"),
			Open:   fields.Int("open") * cotahistPriceScale,
			High:   fields.Int("high") * cotahistPriceScale,
			Low:    fields.Int("low") * cotahistPriceScale,
			Close:  fields.Int("close") * cotahistPriceScale,
			Volume: fields.Int("volume") * cotahistPriceScale,
		},
	}, true, nil
}

// ReadCOTAHIST decodes a whole file grouped by symbol. Bad lines are returned
// as MalformedRecord errors and skipped.
func ReadCOTAHIST(path string) (map[string][]domain.DailyRecord, []error, error) {
	lines, err := files.ReadLines(path)
	if err != nil {
		return nil, nil, apperrors.NewMissingInputError(path, err)
	}

	out := make(map[string][]domain.DailyRecord)
	var rejects []error
	for i, line := range lines {
		q, ok, err := DecodeCOTAHIST(line)
		if err != nil {
			rejects = append(rejects, apperrors.NewMalformedRecordError(fmt.Sprintf("%s:%d", path, i+1), "invalid COTAHIST record", err))
			continue
		}
		if ok {
			out[q.Symbol] = append(out[q.Symbol], q.Daily)
		}
	}
	return out, rejects, nil
}
