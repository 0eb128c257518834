package errors

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorLog_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "error.txt")
	log := NewErrorLog(path)

	require.NoError(t, log.Append(CategoryDividends, "9512", fmt.Errorf("bad date\r\n\"31/02/2020\"")))
	require.NoError(t, log.Append(CategoryCorpEvents, "1023", NewInvalidRatioError("1023", "0/1")))
	require.NoError(t, log.Append(CategoryDividends, "9512", nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Dividends,9512,bad date  \"31/02/2020\"", lines[0])
	assert.Equal(t, "CorpEvents,1023,[INVALID_RATIO] invalid ratio \"0/1\"", lines[1])
	assert.Equal(t, 2, log.Count())
}

func TestErrorLog_ConcurrentAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error.txt")
	log := NewErrorLog(path)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, log.Append(CategoryRecords, fmt.Sprintf("src%02d", i), fmt.Errorf("row %d", i)))
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 50)

	sort.Strings(lines)
	assert.Equal(t, "Records,src00,row 0", lines[0])
	assert.Equal(t, "Records,src49,row 49", lines[49])
}
