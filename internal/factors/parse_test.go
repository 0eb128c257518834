package factors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/shared/testutil"
	"bovespacli/pkg/contracts/domain"
)

func TestParseDividendRow(t *testing.T) {
	tests := []struct {
		name     string
		cols     []string
		wantDate string
		wantType apperrors.ErrorType
	}{
		{"ex date", []string{"01/02/2024", "0,50", "ON", "15/02/2024", "16/02/2024", "10,00"}, "20240216", ""},
		{"last with fallback", []string{"01/02/2024", "0,50", "ON", "15/02/2024", "", "10,00"}, "20240215", ""},
		{"approval fallback", []string{"01/02/2024", "0,50", "ON", "-", "-", "10,00"}, "20240201", ""},
		{"no date", []string{"x", "0,50", "ON", "-", "-", "10,00"}, "", apperrors.ErrTypeMalformed},
		{"zero reference", []string{"01/02/2024", "0,50", "ON", "", "16/02/2024", "0,00"}, "", apperrors.ErrTypeNonPositive},
		{"short row", []string{"01/02/2024", "0,50"}, "", apperrors.ErrTypeMalformed},
		{"bad amount", []string{"01/02/2024", "abc", "ON", "", "16/02/2024", "10"}, "", apperrors.ErrTypeMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := ParseDividendRow("9512", tt.cols)
			if tt.wantType != "" {
				assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ON", row.Class)
			assert.Equal(t, tt.wantDate, row.Dividend.Date.Format(domain.DateLayout))
			assert.True(t, row.Dividend.Amount.Equal(dec("0.5")))
			assert.True(t, row.Dividend.ReferencePrice.Equal(dec("10")))
		})
	}
}

func TestParseStructuralRow(t *testing.T) {
	t.Run("fraction", func(t *testing.T) {
		ev, err := ParseStructuralRow("1", []string{"Desdobramento", "01/02/2024", "05/02/2024", "", "1/2"}, nil)
		require.NoError(t, err)
		assert.Equal(t, testutil.Date(2024, 2, 5), ev.Date)
		assert.Equal(t, domain.StructuralSplit, ev.Kind)
		assert.True(t, ev.Ratio().Equal(dec("0.5")))
	})

	t.Run("percentage bonus", func(t *testing.T) {
		ev, err := ParseStructuralRow("1", []string{"Bonificação", "01/02/2024", "", "", "25"}, nil)
		require.NoError(t, err)
		assert.Equal(t, testutil.Date(2024, 2, 1), ev.Date)
		assert.Equal(t, domain.StructuralBonus, ev.Kind)
		assert.True(t, ev.Ratio().Equal(dec("0.8")))
	})

	t.Run("override", func(t *testing.T) {
		o := dec("0.1")
		ev, err := ParseStructuralRow("9512", []string{"Grupamento", "01/02/2024", "05/02/2024", "", "10/1"}, &o)
		require.NoError(t, err)
		assert.True(t, ev.Ratio().Equal(dec("0.1")))
	})

	t.Run("spin-off excluded", func(t *testing.T) {
		ev, err := ParseStructuralRow("1", []string{"Cisão com redução de capital", "01/02/2024", "05/02/2024", "", "1/2"}, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.StructuralExclude, ev.Kind)
	})

	for _, ratio := range []string{"0", "-5", "abc", "1/0", "1/2/3"} {
		t.Run("invalid ratio "+ratio, func(t *testing.T) {
			_, err := ParseStructuralRow("1", []string{"Desdobramento", "01/02/2024", "05/02/2024", "", ratio}, nil)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInvalidRatio), "got %v", err)
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := map[string]string{
		"1.234,56": "1234.56",
		"0,5":      "0.5",
		" 12 ":     "12",
		"1.000":    "1000",
	}
	for in, want := range tests {
		got, err := ParseNumber(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(dec(want)), "%s -> %s", in, got)
	}
	for _, bad := range []string{"R$ 1", "1,234.56", "0,5.1", "1,2,3"} {
		_, err := ParseNumber(bad)
		assert.Error(t, err, bad)
	}
}
