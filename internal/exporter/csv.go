package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bovespacli/internal/config"
)

// Separator is the field delimiter of every exported file
const Separator = ';'

// CSVWriter provides semicolon CSV export functionality
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance. paths may be nil when every
// path given to it is absolute.
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers []string
	Records [][]string
}

// WriteCSV replaces a file whole with the given headers and records
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	sw, err := w.CreateStreamWriter(filePath, options.Headers)
	if err != nil {
		return err
	}
	for i, record := range options.Records {
		if err := sw.WriteRecord(record); err != nil {
			sw.Abort()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return sw.Close()
}

// WriteRecords replaces a file with headerless records
func (w *CSVWriter) WriteRecords(filePath string, records [][]string) error {
	return w.WriteCSV(filePath, WriteOptions{Records: records})
}

// StreamWriter writes records one at a time to a temp file that replaces the
// target on Close. Readers never see a partial file.
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
	target string
	count  int
}

// CreateStreamWriter creates a new streaming CSV writer
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	slog.Debug("Creating CSV stream writer",
		slog.String("file_path", fullPath),
		slog.Int("header_count", len(headers)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	writer := csv.NewWriter(file)
	writer.Comma = Separator

	sw := &StreamWriter{file: file, writer: writer, target: fullPath}
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			sw.Abort()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return sw, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return err
	}
	s.count++
	return nil
}

// Count returns the number of records written so far
func (s *StreamWriter) Count() int {
	return s.count
}

// Close flushes the stream and moves it over the target file
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.Abort()
		return err
	}
	if err := s.file.Close(); err != nil {
		os.Remove(s.file.Name())
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(s.file.Name(), s.target); err != nil {
		os.Remove(s.file.Name())
		return fmt.Errorf("failed to replace %s: %w", s.target, err)
	}
	return nil
}

// Abort discards the stream, leaving any existing target untouched
func (s *StreamWriter) Abort() {
	s.file.Close()
	os.Remove(s.file.Name())
}

// resolvePath places relative paths under the export directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return filepath.Join(w.paths.ExportDir, filePath)
}
