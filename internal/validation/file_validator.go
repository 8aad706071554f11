package validation

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bmatcuk/doublestar/v4"

	apperrors "sipotcli/internal/errors"
)

// FileValidator checks the directories a run reads from and writes to
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputDirectory validates that the input directory exists. When
// requiredPattern is set, a missing match is logged but is not an error.
func (v *FileValidator) ValidateInputDirectory(dir string, requiredPattern string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return apperrors.NewAppValidationError(fmt.Sprintf("input directory %s does not exist", dir)).
			WithContext("directory", dir)
	}
	if err != nil {
		v.logger.Error("Failed to stat input directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat directory %s", dir), err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is not a directory", dir)).
			WithContext("directory", dir)
	}

	if requiredPattern == "" {
		return nil
	}

	matches, err := doublestar.Glob(os.DirFS(dir), requiredPattern, doublestar.WithFilesOnly())
	if err != nil {
		v.logger.Error("Failed to check for files",
			slog.String("pattern", requiredPattern),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to check for files: %w", err)
	}

	if len(matches) == 0 {
		// This is not an error - just no files to process
		v.logger.Warn("No files matching pattern found",
			slog.String("directory", dir),
			slog.String("pattern", requiredPattern))
		return nil
	}

	v.logger.Info("Input directory validated",
		slog.String("directory", dir),
		slog.Int("files_found", len(matches)),
		slog.String("pattern", requiredPattern))
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	// A uniquely named file leaves anything the user owns untouched
	tmp, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return apperrors.NewStorageError(fmt.Sprintf("failed to close write test file in %s", dir), err)
	}
	if err := os.Remove(tmp.Name()); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to remove write test file %s", tmp.Name()), err)
	}

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
