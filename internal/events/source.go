package events

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bovespacli/internal/config"
	apperrors "bovespacli/internal/errors"
	"bovespacli/pkg/contracts/domain"
)

// Source delivers the raw corporate-action rows of one issuer
type Source interface {
	Fetch(ctx context.Context, issuer string) (domain.EventRows, error)
}

// NewSource builds the source selected by configuration
func NewSource(cfg config.EventsConfig, paths *config.Paths, logger *slog.Logger) (Source, error) {
	switch cfg.Source {
	case "dir":
		return NewDirSource(paths.EventsDir), nil
	case "workbook":
		return NewWorkbookSource(paths.EventsWorkbook), nil
	case "http":
		return NewHTTPSource(cfg.BaseURL, cfg.Timeout, cfg.RatePerSecond, cfg.Burst, logger), nil
	case "none", "":
		return NoneSource{}, nil
	}
	return nil, apperrors.NewConfigError(fmt.Sprintf("unknown event source %q", cfg.Source), nil)
}

// NoneSource reports no events for every issuer
type NoneSource struct{}

func (NoneSource) Fetch(context.Context, string) (domain.EventRows, error) {
	return domain.EventRows{}, nil
}

// DirSource reads "<dir>/<issuer>.dividends.txt" and "<dir>/<issuer>.events.txt",
// both semicolon delimited. A missing file means no rows of that kind.
type DirSource struct {
	dir string
}

// NewDirSource creates a directory-backed source
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (s *DirSource) Fetch(ctx context.Context, issuer string) (domain.EventRows, error) {
	if err := ctx.Err(); err != nil {
		return domain.EventRows{}, err
	}
	code := NormalizeCode(issuer)

	var (
		rows domain.EventRows
		err  error
	)
	if rows.Dividends, err = readRows(filepath.Join(s.dir, code+".dividends.txt")); err != nil {
		return domain.EventRows{}, err
	}
	if rows.Structural, err = readRows(filepath.Join(s.dir, code+".events.txt")); err != nil {
		return domain.EventRows{}, err
	}
	return rows, nil
}

func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open event file", err).WithContext("file", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, apperrors.NewMalformedRecordError(path, "unreadable event file", err)
	}

	out := records[:0]
	for _, rec := range records {
		if len(rec) == 0 || strings.HasPrefix(strings.TrimSpace(rec[0]), "#") {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
