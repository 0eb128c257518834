package events

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/shared/testutil"
)

func TestLoadIssuers(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteLines(t, dir, "codes.csv",
		"09512;PETR3;PETR4",
		"04170;VALE3",
		"04170;vale5",
	)

	is, err := LoadIssuers(path)
	require.NoError(t, err)
	assert.Equal(t, 2, is.Len())
	assert.Equal(t, []string{"4170", "9512"}, is.Codes())
	assert.Equal(t, []string{"PETR3", "PETR4"}, is.Symbols("9512"))
	assert.Equal(t, []string{"VALE3", "VALE5"}, is.Symbols("04170"))

	code, ok := is.IssuerOf("petr4")
	assert.True(t, ok)
	assert.Equal(t, "9512", code)

	_, ok = is.IssuerOf("ITUB4")
	assert.False(t, ok)

	bad := testutil.WriteLines(t, dir, "bad.csv", "09512")
	_, err = LoadIssuers(bad)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMalformed))

	_, err = LoadIssuers(filepath.Join(dir, "none.csv"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingInput))
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "9512", NormalizeCode(" 09512 "))
	assert.Equal(t, "0", NormalizeCode("00000"))
	assert.Equal(t, "ABC", NormalizeCode("abc"))
}
