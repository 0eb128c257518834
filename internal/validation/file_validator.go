package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "bovespacli/internal/errors"
)

// FileValidator checks run prerequisites before any output is touched
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateInputDirectory checks that dir exists and reports how many files match pattern.
// No matching files is not an error.
func (v *FileValidator) ValidateInputDirectory(dir string, pattern string) (int, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist", slog.String("directory", dir))
		return 0, apperrors.NewConfigError(fmt.Sprintf("input directory %s does not exist", dir), err)
	}
	if err != nil {
		return 0, apperrors.NewConfigError(fmt.Sprintf("failed to stat directory %s", dir), err)
	}
	if !info.IsDir() {
		return 0, apperrors.NewConfigError(fmt.Sprintf("%s is not a directory", dir), nil)
	}

	if pattern == "" {
		return 0, nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return 0, apperrors.NewConfigError("invalid file pattern", err)
	}
	if len(matches) == 0 {
		v.logger.Warn("No files matching pattern found",
			slog.String("directory", dir),
			slog.String("pattern", pattern))
		return 0, nil
	}

	v.logger.Info("Input directory validated",
		slog.String("directory", dir),
		slog.Int("files_found", len(matches)),
		slog.String("pattern", pattern))
	return len(matches), nil
}

// ValidateOutputDirectory ensures dir exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewConfigError(fmt.Sprintf("cannot create output directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".write-test-*")
	if err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	name := tmp.Name()
	tmp.Close()
	os.Remove(name)

	return nil
}

// ValidateRequiredFile checks a prerequisite file. Its absence halts the run.
func (v *FileValidator) ValidateRequiredFile(path, what string) error {
	info, err := os.Stat(path)
	if err != nil {
		v.logger.Error("Required file missing",
			slog.String("file", path),
			slog.String("kind", what))
		return apperrors.NewConfigError(fmt.Sprintf("required %s file %s is missing", what, path), err)
	}
	if info.IsDir() {
		return apperrors.NewConfigError(fmt.Sprintf("%s path %s is a directory", what, path), nil)
	}
	return nil
}

// ValidateOptionalFile reports whether an optional input exists, logging when it does not
func (v *FileValidator) ValidateOptionalFile(path, what string) bool {
	if path == "" {
		return false
	}
	if _, err := os.Stat(path); err != nil {
		v.logger.Warn("Optional file not found",
			slog.String("file", path),
			slog.String("kind", what))
		return false
	}
	return true
}
