package records

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldKind tells Decode how to check a raw field
type FieldKind int

const (
	KindText FieldKind = iota
	KindInt
	KindDecimal
	KindDate
)

// Field is a named [Start, End) byte range of a fixed-width line
type Field struct {
	Name  string
	Start int
	End   int
	Kind  FieldKind
}

// FixedWidthSchema describes one fixed-width record layout
type FixedWidthSchema struct {
	Name   string
	Fields []Field

	index map[string]int
	width int
}

// NewFixedWidthSchema builds and validates a schema
func NewFixedWidthSchema(name string, fields ...Field) (*FixedWidthSchema, error) {
	s := &FixedWidthSchema{Name: name, Fields: fields}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// MustFixedWidthSchema is NewFixedWidthSchema for package-level layouts
func MustFixedWidthSchema(name string, fields ...Field) *FixedWidthSchema {
	s, err := NewFixedWidthSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks that fields are ordered, non-overlapping, uniquely named and
// have positive widths
func (s *FixedWidthSchema) Validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema %s has no fields", s.Name)
	}
	s.index = make(map[string]int, len(s.Fields))
	prevEnd := 0
	for i, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %s: field %d has no name", s.Name, i)
		}
		if _, dup := s.index[f.Name]; dup {
			return fmt.Errorf("schema %s: duplicate field %s", s.Name, f.Name)
		}
		if f.Start < 0 || f.End <= f.Start {
			return fmt.Errorf("schema %s: field %s has invalid range [%d,%d)", s.Name, f.Name, f.Start, f.End)
		}
		if f.Start < prevEnd {
			return fmt.Errorf("schema %s: field %s overlaps its predecessor", s.Name, f.Name)
		}
		s.index[f.Name] = i
		prevEnd = f.End
	}
	s.width = prevEnd
	return nil
}

// Width is the minimum line length the schema needs
func (s *FixedWidthSchema) Width() int {
	return s.width
}

// Decode slices a line into trimmed fields and checks each against its kind
func (s *FixedWidthSchema) Decode(line string) (Fields, error) {
	if len(line) < s.width {
		return Fields{}, fmt.Errorf("%s line has %d bytes, need %d", s.Name, len(line), s.width)
	}
	values := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		raw := strings.TrimSpace(line[f.Start:f.End])
		if err := checkKind(f.Name, f.Kind, raw); err != nil {
			return Fields{}, err
		}
		values[f.Name] = raw
	}
	return Fields{values: values}, nil
}

// Column is a named position of a delimited line
type Column struct {
	Name  string
	Index int
	Kind  FieldKind
}

// DelimitedSchema describes a separator-delimited record layout
type DelimitedSchema struct {
	Name      string
	Delimiter string
	Columns   []Column
}

// Decode splits a line and checks the named columns
func (s *DelimitedSchema) Decode(line string) (Fields, error) {
	parts := strings.Split(line, s.Delimiter)
	values := make(map[string]string, len(s.Columns))
	for _, c := range s.Columns {
		if c.Index >= len(parts) {
			return Fields{}, fmt.Errorf("%s line has %d columns, missing %s", s.Name, len(parts), c.Name)
		}
		raw := strings.TrimSpace(parts[c.Index])
		if err := checkKind(c.Name, c.Kind, raw); err != nil {
			return Fields{}, err
		}
		values[c.Name] = raw
	}
	return Fields{values: values}, nil
}

// Fields is the typed accessor over one decoded line. Accessors assume the
// value already passed its kind check in Decode.
type Fields struct {
	values map[string]string
}

// Text returns the trimmed raw value
func (f Fields) Text(name string) string {
	return f.values[name]
}

// Int returns an integer field
func (f Fields) Int(name string) int64 {
	n, _ := strconv.ParseInt(f.values[name], 10, 64)
	return n
}

// Decimal returns a decimal field; a comma decimal separator is accepted
func (f Fields) Decimal(name string) decimal.Decimal {
	d, _ := parseDecimal(f.values[name])
	return d
}

// Date returns a date field
func (f Fields) Date(name string) time.Time {
	d, _ := parseDate(f.values[name])
	return d
}

func checkKind(name string, kind FieldKind, raw string) error {
	var err error
	switch kind {
	case KindInt:
		_, err = strconv.ParseInt(raw, 10, 64)
	case KindDecimal:
		_, err = parseDecimal(raw)
	case KindDate:
		_, err = parseDate(raw)
	}
	if err != nil {
		return fmt.Errorf("field %s: invalid value %q", name, raw)
	}
	return nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.Replace(raw, ",", ".", 1))
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("20060102", strings.ReplaceAll(raw, "-", ""))
}
