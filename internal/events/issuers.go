package events

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/files"
)

// Issuers maps issuer codes to the tickers they list
type Issuers struct {
	symbols  map[string][]string
	bySymbol map[string]string
}

// NormalizeCode strips leading zeros from numeric issuer codes so "09512" and "9512" agree
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if n, err := strconv.Atoi(code); err == nil {
		return strconv.Itoa(n)
	}
	return strings.ToUpper(code)
}

// NewIssuers builds the table from code -> symbols
func NewIssuers(table map[string][]string) *Issuers {
	is := &Issuers{symbols: make(map[string][]string), bySymbol: make(map[string]string)}
	for code, syms := range table {
		code = NormalizeCode(code)
		for _, s := range syms {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s == "" {
				continue
			}
			if _, dup := is.bySymbol[s]; dup {
				continue
			}
			is.bySymbol[s] = code
			is.symbols[code] = append(is.symbols[code], s)
		}
	}
	for code := range is.symbols {
		sort.Strings(is.symbols[code])
	}
	return is
}

// LoadIssuers reads "code;SYM1;SYM2" lines
func LoadIssuers(path string) (*Issuers, error) {
	lines, err := files.ReadLines(path)
	if err != nil {
		return nil, apperrors.NewMissingInputError(path, err)
	}

	table := make(map[string][]string)
	for i, line := range lines {
		cols := strings.Split(line, ";")
		if len(cols) < 2 || strings.TrimSpace(cols[0]) == "" {
			return nil, apperrors.NewMalformedRecordError(fmt.Sprintf("%s:%d", path, i+1), "issuer line needs a code and a symbol", nil)
		}
		code := cols[0]
		table[code] = append(table[code], cols[1:]...)
	}
	return NewIssuers(table), nil
}

// Codes returns the issuer codes in ascending order
func (is *Issuers) Codes() []string {
	out := make([]string, 0, len(is.symbols))
	for c := range is.symbols {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Symbols returns the tickers of an issuer
func (is *Issuers) Symbols(code string) []string {
	return is.symbols[NormalizeCode(code)]
}

// IssuerOf returns the issuer code of a ticker
func (is *Issuers) IssuerOf(symbol string) (string, bool) {
	code, ok := is.bySymbol[strings.ToUpper(symbol)]
	return code, ok
}

// Len returns the number of issuers
func (is *Issuers) Len() int {
	return len(is.symbols)
}
