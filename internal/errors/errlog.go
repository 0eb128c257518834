package errors

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Error log categories
const (
	CategoryDividends  = "Dividends"
	CategoryCorpEvents = "CorpEvents"
	CategoryMapFiles   = "MapFiles"
	CategoryRecords    = "Records"
	CategoryBars       = "Bars"
	CategoryExport     = "Export"
	CategoryFetch      = "Fetch"
)

// ErrorLog is the append-only error file shared by all instrument workers.
// Each line is "<category>,<source>,<message>".
type ErrorLog struct {
	mu    sync.Mutex
	path  string
	count int
}

// NewErrorLog creates a log appending to path. The file is created lazily on first write.
func NewErrorLog(path string) *ErrorLog {
	return &ErrorLog{path: path}
}

// Path returns the file path of the log
func (l *ErrorLog) Path() string {
	return l.path
}

// Append writes one line. Safe for concurrent use.
func (l *ErrorLog) Append(category, source string, err error) error {
	if err == nil {
		return nil
	}
	msg := strings.NewReplacer("\r", " ", "\n", " ").Replace(err.Error())
	line := fmt.Sprintf("%s,%s,%s\n", category, source, msg)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create error log directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open error log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append error log: %w", err)
	}
	l.count++
	return nil
}

// Count returns the number of lines appended by this process
func (l *ErrorLog) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
