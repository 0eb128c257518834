package calendar

import (
	"errors"
	"strings"
	"time"
)

// ErrFuturesNotImplemented is returned by the futures expiration path, whose
// exchange tie-break rule is not confirmed.
var ErrFuturesNotImplemented = errors.New("futures expiration calendar is not implemented")

// futureMonthCodes maps month 1..12 to the contract letter
const futureMonthCodes = "fghjkmnquvxz"

// MonthCode returns the contract month letter (upper case) for m
func MonthCode(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return strings.ToUpper(string(futureMonthCodes[m-1]))
}

// ContractMonth parses a contract month letter
func ContractMonth(code string) (time.Month, bool) {
	i := strings.Index(futureMonthCodes, strings.ToLower(code))
	if len(code) != 1 || i < 0 {
		return 0, false
	}
	return time.Month(i + 1), true
}

// FutureExpiration would return the last trading day of a contract month.
// It always fails until the expiration rule is confirmed against exchange rules.
func (c *Calendar) FutureExpiration(year int, month time.Month) (time.Time, error) {
	return time.Time{}, ErrFuturesNotImplemented
}
