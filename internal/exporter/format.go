package exporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// Supported output locales
var (
	LocalePtBR = language.BrazilianPortuguese
	LocaleEnUS = language.AmericanEnglish
)

var localeMatcher = language.NewMatcher([]language.Tag{LocaleEnUS, LocalePtBR})

// Locale decides the decimal separator of exported numbers
type Locale struct {
	Tag       language.Tag
	separator string
}

// ParseLocale accepts any BCP 47 tag and picks the closest supported locale.
// Portuguese variants map to pt-BR, everything else to en-US.
func ParseLocale(s string) (Locale, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return Locale{}, fmt.Errorf("invalid locale %q: %w", s, err)
	}
	_, idx, _ := localeMatcher.Match(tag)
	if idx == 1 {
		return Locale{Tag: LocalePtBR, separator: ","}, nil
	}
	return Locale{Tag: LocaleEnUS, separator: "."}, nil
}

// MustParseLocale is ParseLocale for constant tags
func MustParseLocale(s string) Locale {
	l, err := ParseLocale(s)
	if err != nil {
		panic(err)
	}
	return l
}

// FormatPrice renders v with exactly two fractional digits and no grouping
func (l Locale) FormatPrice(v decimal.Decimal) string {
	s := v.StringFixedBank(2)
	if l.separator == "," {
		s = strings.Replace(s, ".", ",", 1)
	}
	return s
}

// formatDate renders dd/MM/yyyy
func formatDate(d time.Time) string {
	return d.Format("02/01/2006")
}

// formatTimeOfDay renders milliseconds since midnight as HH:mm:ss
func formatTimeOfDay(millis int64) string {
	s := millis / 1000
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}
