package instruments

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/files"
	"bovespacli/pkg/contracts/domain"
)

var validate = validator.New()

// Registry is the read-only symbol lookup for one run
type Registry struct {
	bySymbol map[string]domain.Instrument
	order    []string
}

// NewRegistry builds a registry from instruments, keeping the first entry per symbol
func NewRegistry(list []domain.Instrument) *Registry {
	r := &Registry{bySymbol: make(map[string]domain.Instrument, len(list))}
	for _, inst := range list {
		inst.Symbol = strings.ToUpper(inst.Symbol)
		if _, dup := r.bySymbol[inst.Symbol]; dup {
			continue
		}
		r.bySymbol[inst.Symbol] = inst
		r.order = append(r.order, inst.Symbol)
	}
	sort.Strings(r.order)
	return r
}

// Load reads a registry file of "SYMBOL,Name,type" lines.
// Malformed lines are returned as MalformedRecord errors and skipped.
func Load(path string) (*Registry, []error, error) {
	lines, err := files.ReadLines(path)
	if err != nil {
		return nil, nil, apperrors.NewMissingInputError(path, err)
	}

	var (
		list    []domain.Instrument
		rejects []error
	)
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		inst, err := parseLine(line)
		if err != nil {
			rejects = append(rejects, apperrors.NewMalformedRecordError(
				fmt.Sprintf("%s:%d", path, i+1), "invalid instrument line", err))
			continue
		}
		list = append(list, inst)
	}

	return NewRegistry(list), rejects, nil
}

func parseLine(line string) (domain.Instrument, error) {
	cols := strings.Split(line, ",")
	if len(cols) < 3 {
		return domain.Instrument{}, fmt.Errorf("expected 3 columns, got %d", len(cols))
	}

	typ, ok := domain.ParseInstrumentType(strings.ToLower(strings.TrimSpace(cols[2])))
	if !ok {
		return domain.Instrument{}, fmt.Errorf("unknown instrument type %q", cols[2])
	}

	inst := domain.Instrument{
		Symbol: strings.ToUpper(strings.TrimSpace(cols[0])),
		Name:   strings.TrimSpace(cols[1]),
		Type:   typ,
	}
	if err := validate.Struct(inst); err != nil {
		return domain.Instrument{}, err
	}
	if inst.Type == domain.InstrumentTypeEquity && !ValidateSymbol(inst.Symbol) {
		return domain.Instrument{}, fmt.Errorf("invalid equity symbol %q", inst.Symbol)
	}
	return inst, nil
}

// Lookup returns the instrument registered under symbol
func (r *Registry) Lookup(symbol string) (domain.Instrument, bool) {
	inst, ok := r.bySymbol[strings.ToUpper(symbol)]
	return inst, ok
}

// Contains reports whether symbol is registered
func (r *Registry) Contains(symbol string) bool {
	_, ok := r.bySymbol[strings.ToUpper(symbol)]
	return ok
}

// Len returns the number of registered instruments
func (r *Registry) Len() int {
	return len(r.order)
}

// Symbols returns the sorted symbols of the given type. An empty type returns all.
func (r *Registry) Symbols(typ domain.InstrumentType) []string {
	out := make([]string, 0, len(r.order))
	for _, s := range r.order {
		if typ == "" || r.bySymbol[s].Type == typ {
			out = append(out, s)
		}
	}
	return out
}

// InScope keeps the symbols that are registered with the given type, preserving order
func (r *Registry) InScope(symbols []string, typ domain.InstrumentType) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		inst, ok := r.Lookup(s)
		if ok && (typ == "" || inst.Type == typ) {
			out = append(out, inst.Symbol)
		}
	}
	return out
}
