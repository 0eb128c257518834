package mapfile

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "bovespacli/internal/errors"
	"bovespacli/pkg/contracts/domain"
)

// WriteAll writes one "<symbol>.csv" per entry into dir and removes map files
// left from earlier runs that are no longer produced.
func WriteAll(dir string, maps map[string][]domain.MapSegment) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError("failed to create map directory", err).WithContext("dir", dir)
	}

	symbols := make([]string, 0, len(maps))
	keep := make(map[string]struct{}, len(maps))
	for sym := range maps {
		symbols = append(symbols, sym)
		keep[fileName(sym)] = struct{}{}
	}
	sort.Strings(symbols)

	for _, sym := range symbols {
		if err := Write(filepath.Join(dir, fileName(sym)), maps[sym]); err != nil {
			return err
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return apperrors.NewStorageError("failed to list map directory", err).WithContext("dir", dir)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".csv" {
			continue
		}
		if _, ok := keep[e.Name()]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return apperrors.NewStorageError("failed to remove stale map file", err).WithContext("file", e.Name())
		}
	}
	return nil
}

func fileName(symbol string) string {
	return strings.ToLower(symbol) + ".csv"
}
