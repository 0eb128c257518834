package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// WriteLines writes lines joined by "\n" (with a trailing newline) to dir/name, creating parents
func WriteLines(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ReadLines returns the non-empty lines of a file
func ReadLines(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Date builds a UTC midnight date
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// MustDate parses a YYYYMMDD string or fails the test
func MustDate(t *testing.T, s string) time.Time {
	t.Helper()

	d, err := time.Parse("20060102", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}
