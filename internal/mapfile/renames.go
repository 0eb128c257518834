package mapfile

import (
	"fmt"
	"strings"

	apperrors "bovespacli/internal/errors"
	"bovespacli/internal/files"
)

// Renames maps a current symbol to the symbols it replaced
type Renames map[string][]string

// LoadRenames reads "CURRENT,PRED1,PRED2" lines. Entries carrying a "//" or "#"
// marker are commented out and skipped.
func LoadRenames(path string) (Renames, error) {
	lines, err := files.ReadLines(path)
	if err != nil {
		return nil, apperrors.NewMissingInputError(path, err)
	}

	out := make(Renames)
	for i, line := range lines {
		cols := strings.Split(line, ",")
		cur := strings.ToUpper(strings.TrimSpace(cols[0]))
		if cur == "" || commented(cur) {
			continue
		}
		if len(cols) < 2 {
			return nil, apperrors.NewMalformedRecordError(fmt.Sprintf("%s:%d", path, i+1), "rename without predecessor", nil)
		}
		for _, c := range cols[1:] {
			pred := strings.ToUpper(strings.TrimSpace(c))
			if pred == "" || commented(pred) || pred == cur {
				continue
			}
			out[cur] = append(out[cur], pred)
		}
	}
	return out, nil
}

func commented(s string) bool {
	return strings.Contains(s, "//") || strings.HasPrefix(s, "#")
}
