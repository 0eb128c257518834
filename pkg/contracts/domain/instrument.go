package domain

// InstrumentType classifies a registered symbol
type InstrumentType string

const (
	InstrumentTypeEquity InstrumentType = "equity"
	InstrumentTypeOption InstrumentType = "option"
	InstrumentTypeFuture InstrumentType = "future"
)

// ParseInstrumentType converts a registry type column into an InstrumentType.
// The boolean is false for values outside the supported set.
func ParseInstrumentType(s string) (InstrumentType, bool) {
	switch InstrumentType(s) {
	case InstrumentTypeEquity, InstrumentTypeOption, InstrumentTypeFuture:
		return InstrumentType(s), true
	case "futures":
		return InstrumentTypeFuture, true
	}
	return "", false
}

// Instrument represents one registered symbol. Instruments are immutable once loaded.
type Instrument struct {
	Symbol string         `json:"symbol" validate:"required,uppercase,min=4,max=12"`
	Name   string         `json:"name"`
	Type   InstrumentType `json:"type" validate:"required,oneof=equity option future"`
}
