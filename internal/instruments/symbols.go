package instruments

import (
	"strconv"
	"strings"
)

var shareClasses = map[int]string{
	3:  "ON",
	4:  "PN",
	5:  "PNA",
	6:  "PNB",
	7:  "PNC",
	8:  "PND",
	11: "UNT",
}

// ValidateSymbol checks the equity ticker shape: a four-letter root followed by a
// share-class number, 5 to 7 characters in total.
func ValidateSymbol(symbol string) bool {
	if len(symbol) < 5 || len(symbol) > 7 {
		return false
	}
	for _, c := range symbol[:4] {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	_, ok := shareClassNumber(symbol)
	return ok
}

// ShareClass returns the class label (ON, PN, UNT, ...) of an equity ticker
func ShareClass(symbol string) (string, bool) {
	n, ok := shareClassNumber(symbol)
	if !ok {
		return "", false
	}
	return shareClasses[n], true
}

// Root returns the four-character issuer root of a ticker
func Root(symbol string) string {
	if len(symbol) < 4 {
		return strings.ToUpper(symbol)
	}
	return strings.ToUpper(symbol[:4])
}

func shareClassNumber(symbol string) (int, bool) {
	if len(symbol) < 5 {
		return 0, false
	}
	suffix := symbol[4:]
	// Fractional market tickers end in F, e.g. PETR4F
	suffix = strings.TrimSuffix(suffix, "F")
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	_, ok := shareClasses[n]
	return n, ok
}

// Filter keeps the symbols present in allow. An empty allow list keeps everything.
func Filter(symbols []string, allow []string) []string {
	if len(allow) == 0 {
		return symbols
	}
	set := make(map[string]struct{}, len(allow))
	for _, a := range allow {
		set[strings.ToUpper(strings.TrimSpace(a))] = struct{}{}
	}
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := set[strings.ToUpper(s)]; ok {
			out = append(out, s)
		}
	}
	return out
}
