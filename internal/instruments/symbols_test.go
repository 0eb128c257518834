package instruments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSymbol(t *testing.T) {
	tests := []struct {
		symbol string
		want   bool
	}{
		{"PETR4", true},
		{"VALE3", true},
		{"TAEE11", true},
		{"PETR4F", true},
		{"PETR9", false},
		{"PETR", false},
		{"PETR10", false},
		{"PETRX4", false},
		{"petr4", false},
		{"ABCDE1234", false},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSymbol(tt.symbol))
		})
	}
}

func TestShareClass(t *testing.T) {
	tests := []struct {
		symbol string
		class  string
		ok     bool
	}{
		{"VALE3", "ON", true},
		{"PETR4", "PN", true},
		{"USIM5", "PNA", true},
		{"ELET6", "PNB", true},
		{"TAEE11", "UNT", true},
		{"ABCD9", "", false},
		{"AB", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			class, ok := ShareClass(tt.symbol)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.class, class)
		})
	}
}

func TestFilterAndRoot(t *testing.T) {
	symbols := []string{"PETR4", "VALE3", "ITUB4"}

	assert.Equal(t, symbols, Filter(symbols, nil))
	assert.Equal(t, []string{"PETR4", "ITUB4"}, Filter(symbols, []string{" itub4", "PETR4", "XXXX3"}))
	assert.Equal(t, "PETR", Root("petr4"))
	assert.Equal(t, "AB", Root("ab"))
}
