package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// DayFile is a per-day raw file such as 20170102_trade.csv
type DayFile struct {
	FileInfo
	Date     time.Time
	DataType string
}

// Discovery lists raw inputs below a base directory
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindFiles returns the regular files in dir with the given extension, sorted by name
func (d *Discovery) FindFiles(dir, ext string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if ext != "" && !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// FindSymbols returns the upper-cased symbols that have a <symbol>.csv history in dir
func (d *Discovery) FindSymbols(dir string) ([]string, error) {
	files, err := d.FindFiles(dir, ".csv")
	if err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(files))
	for _, f := range files {
		symbols = append(symbols, strings.ToUpper(strings.TrimSuffix(f.Name, filepath.Ext(f.Name))))
	}
	return symbols, nil
}

// FindDayFiles returns the YYYYMMDD_<type>.csv files in dir, ascending by date.
// An empty dataType matches every type. Files with unparseable names are ignored.
func (d *Discovery) FindDayFiles(dir, dataType string) ([]DayFile, error) {
	files, err := d.FindFiles(dir, ".csv")
	if err != nil {
		return nil, err
	}

	var days []DayFile
	for _, f := range files {
		stem := strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
		datePart, typePart, ok := strings.Cut(stem, "_")
		if !ok {
			continue
		}
		date, err := time.Parse("20060102", datePart)
		if err != nil {
			continue
		}
		if dataType != "" && typePart != dataType {
			continue
		}
		days = append(days, DayFile{FileInfo: f, Date: date, DataType: typePart})
	}

	sort.SliceStable(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days, nil
}

// FindSymbolDirs returns the upper-cased names of the subdirectories of dir, sorted
func (d *Discovery) FindSymbolDirs(dir string) ([]string, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var symbols []string
	for _, entry := range entries {
		if entry.IsDir() {
			symbols = append(symbols, strings.ToUpper(entry.Name()))
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}
