package factors

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/instruments"
	"bovespacli/pkg/contracts/domain"
)

// Builder turns an issuer's raw event rows into per-symbol factor series.
// Every dropped row is appended to the shared error log under the issuer code.
type Builder struct {
	overrides map[string]decimal.Decimal
	errLog    *apperrors.ErrorLog
	logger    *slog.Logger
}

// NewBuilder creates a builder. overrides maps issuer code to a forced
// fractional ratio; errLog may be nil in tests.
func NewBuilder(overrides map[string]string, errLog *apperrors.ErrorLog, logger *slog.Logger) (*Builder, error) {
	parsed := make(map[string]decimal.Decimal, len(overrides))
	for code, v := range overrides {
		d, err := decimal.NewFromString(v)
		if err != nil || !d.IsPositive() {
			return nil, apperrors.NewConfigError(fmt.Sprintf("invalid ratio override %q for issuer %s", v, code), err)
		}
		parsed[code] = d
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{overrides: parsed, errLog: errLog, logger: logger}, nil
}

// Build computes the factor series of one symbol. Dividend rows apply only
// when their share class matches the symbol; structural rows apply to every
// class of the issuer.
func (b *Builder) Build(issuer, symbol string, rows domain.EventRows) []domain.FactorPoint {
	class, _ := instruments.ShareClass(symbol)

	var (
		events    []domain.CorporateEvent
		dividends int
	)
	for i, cols := range rows.Dividends {
		row, err := ParseDividendRow(fmt.Sprintf("%s:dividends:%d", issuer, i+1), cols)
		if err != nil {
			b.report(apperrors.CategoryDividends, issuer, err)
			continue
		}
		if row.Class != class {
			continue
		}
		events = append(events, domain.NewDividendEvent(row.Dividend))
		dividends++
	}

	var override *decimal.Decimal
	if v, ok := b.overrides[issuer]; ok {
		override = &v
	}
	for i, cols := range rows.Structural {
		ev, err := ParseStructuralRow(fmt.Sprintf("%s:events:%d", issuer, i+1), cols, override)
		if err != nil {
			b.report(apperrors.CategoryCorpEvents, issuer, err)
			continue
		}
		events = append(events, domain.NewStructuralEvent(ev))
	}

	points, issues := Compute(issuer, events)
	for _, err := range issues {
		b.report(apperrors.CategoryCorpEvents, issuer, err)
	}

	b.logger.Debug("factor series built",
		slog.String("issuer", issuer),
		slog.String("symbol", symbol),
		slog.Int("dividends", dividends),
		slog.Int("structural", len(events)-dividends),
		slog.Int("points", len(points)))
	return points
}

func (b *Builder) report(category, issuer string, err error) {
	b.logger.Warn("event row dropped",
		slog.String("category", category),
		slog.String("issuer", issuer),
		slog.String("error", err.Error()))
	if b.errLog == nil {
		return
	}
	if lerr := b.errLog.Append(category, issuer, err); lerr != nil {
		b.logger.Error("failed to append error log", slog.String("error", lerr.Error()))
	}
}
