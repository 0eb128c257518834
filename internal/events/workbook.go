package events

import (
	"context"
	"sync"

	"github.com/xuri/excelize/v2"

	apperrors "bovespacli/internal/errors"
	"bovespacli/pkg/contracts/domain"
)

// Sheet names of an events workbook
const (
	DividendsSheet = "dividends"
	EventsSheet    = "events"
)

// WorkbookSource reads every issuer's rows from one workbook. The first row of
// each sheet is a header; the first column of every other row is the issuer
// code and the remaining columns are the event row.
type WorkbookSource struct {
	path string

	once sync.Once
	err  error
	rows map[string]domain.EventRows
}

// NewWorkbookSource creates a workbook-backed source. The file is read on first Fetch.
func NewWorkbookSource(path string) *WorkbookSource {
	return &WorkbookSource{path: path}
}

func (s *WorkbookSource) Fetch(ctx context.Context, issuer string) (domain.EventRows, error) {
	if err := ctx.Err(); err != nil {
		return domain.EventRows{}, err
	}
	s.once.Do(s.load)
	if s.err != nil {
		return domain.EventRows{}, s.err
	}
	return s.rows[NormalizeCode(issuer)], nil
}

func (s *WorkbookSource) load() {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		s.err = apperrors.NewMissingInputError(s.path, err)
		return
	}
	defer f.Close()

	s.rows = make(map[string]domain.EventRows)
	for _, sheet := range []string{DividendsSheet, EventsSheet} {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			s.err = apperrors.NewMalformedRecordError(s.path, "unreadable sheet "+sheet, err)
			return
		}
		for i, row := range rows {
			if i == 0 || len(row) < 2 {
				continue
			}
			code := NormalizeCode(row[0])
			entry := s.rows[code]
			if sheet == DividendsSheet {
				entry.Dividends = append(entry.Dividends, row[1:])
			} else {
				entry.Structural = append(entry.Structural, row[1:])
			}
			s.rows[code] = entry
		}
	}
}
