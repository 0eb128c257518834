package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWidthSchemaValidate(t *testing.T) {
	tests := []struct {
		name    string
		fields  []Field
		wantErr bool
	}{
		{"ordered", []Field{{Name: "a", Start: 0, End: 2}, {Name: "b", Start: 2, End: 5}}, false},
		{"gap allowed", []Field{{Name: "a", Start: 0, End: 2}, {Name: "b", Start: 10, End: 12}}, false},
		{"empty", nil, true},
		{"overlap", []Field{{Name: "a", Start: 0, End: 4}, {Name: "b", Start: 3, End: 5}}, true},
		{"zero width", []Field{{Name: "a", Start: 2, End: 2}}, true},
		{"duplicate", []Field{{Name: "a", Start: 0, End: 1}, {Name: "a", Start: 1, End: 2}}, true},
		{"unnamed", []Field{{Start: 0, End: 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFixedWidthSchema(tt.name, tt.fields...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.Panics(t, func() { MustFixedWidthSchema("bad") })
}

func TestFixedWidthDecode(t *testing.T) {
	s := MustFixedWidthSchema("test",
		Field{Name: "code", Start: 0, End: 3},
		Field{Name: "qty", Start: 3, End: 8, Kind: KindInt},
		Field{Name: "day", Start: 8, End: 16, Kind: KindDate},
	)
	assert.Equal(t, 16, s.Width())

	f, err := s.Decode("AB 0004220240105trailing")
	require.NoError(t, err)
	assert.Equal(t, "AB", f.Text("code"))
	assert.Equal(t, int64(42), f.Int("qty"))
	assert.Equal(t, "2024-01-05", f.Date("day").Format("2006-01-02"))

	_, err = s.Decode("short")
	assert.Error(t, err)

	_, err = s.Decode("AB 00x4220240105")
	assert.Error(t, err)
}

func TestDelimitedDecode(t *testing.T) {
	f, err := NEGSchema.Decode("2024-01-05;PETR4 ;x;38,45;100;10:15:30.250")
	require.NoError(t, err)
	assert.Equal(t, "PETR4", f.Text("ticker"))
	assert.Equal(t, "38.45", f.Decimal("price").String())

	_, err = NEGSchema.Decode("2024-01-05;PETR4;x;38.45")
	assert.Error(t, err)
}
