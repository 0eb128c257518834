package bars

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"bovespacli/pkg/contracts/domain"
)

// SessionOpenMillis is 09:30, the regular session open, in milliseconds since midnight
const SessionOpenMillis int64 = 34_200_000

// ErrUnorderedTicks is returned when ticks are not in non-decreasing time order
var ErrUnorderedTicks = errors.New("ticks are not in time order")

var priceScale = decimal.NewFromInt(domain.PriceScale)

// BucketKey returns the start of the bucket holding t. Buckets are aligned to
// the session open; anything earlier falls into the opening bucket.
func BucketKey(t int64, res domain.Resolution) int64 {
	if !res.Intraday() {
		return 0
	}
	if t < SessionOpenMillis {
		return SessionOpenMillis
	}
	w := res.Width()
	return SessionOpenMillis + (t-SessionOpenMillis)/w*w
}

// Aggregate folds one day's ticks into bars. Ticks must already be in time
// order; open and close follow arrival order within a bucket.
func Aggregate(ticks []domain.TickRecord, res domain.Resolution) ([]domain.Bar, error) {
	for i := 1; i < len(ticks); i++ {
		if ticks[i].TimeOfDayMillis < ticks[i-1].TimeOfDayMillis {
			return nil, ErrUnorderedTicks
		}
	}
	return fold(ticks, res), nil
}

// AggregateSorted stable-sorts a copy of ticks by time before folding
func AggregateSorted(ticks []domain.TickRecord, res domain.Resolution) []domain.Bar {
	sorted := make([]domain.TickRecord, len(ticks))
	copy(sorted, ticks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TimeOfDayMillis < sorted[j].TimeOfDayMillis })
	return fold(sorted, res)
}

func fold(ticks []domain.TickRecord, res domain.Resolution) []domain.Bar {
	var out []domain.Bar
	for _, t := range ticks {
		key := BucketKey(t.TimeOfDayMillis, res)
		notional := decimal.NewFromInt(t.Price).Mul(decimal.NewFromInt(t.Quantity))

		if n := len(out); n > 0 && out[n-1].BucketKey == key {
			b := &out[n-1]
			if t.Price > b.High {
				b.High = t.Price
			}
			if t.Price < b.Low {
				b.Low = t.Price
			}
			b.Close = t.Price
			b.Volume += t.Quantity
			b.Notional = b.Notional.Add(notional)
			continue
		}
		out = append(out, domain.Bar{
			BucketKey: key,
			Open:      t.Price,
			High:      t.Price,
			Low:       t.Price,
			Close:     t.Price,
			Volume:    t.Quantity,
			Notional:  notional,
		})
	}
	for i := range out {
		out[i].Notional = out[i].Notional.Div(priceScale)
	}
	return out
}
