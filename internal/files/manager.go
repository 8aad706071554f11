package files

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Manager provides output file management operations
type Manager struct {
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

// EnsureDirectory creates a directory if it doesn't exist
func (m *Manager) EnsureDirectory(path string) error {
	m.logger.Debug("Ensuring directory exists",
		slog.String("path", path))

	return os.MkdirAll(path, 0755)
}

// AppendixPath derives the appendix file path from the primary output path by
// inserting suffix before the extension: out/licitaciones.csv becomes
// out/licitaciones-APENDICE.csv. A path without extension gets ".csv".
func AppendixPath(outputFile, suffix string) string {
	dir, base := filepath.Split(outputFile)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".csv"
	}
	return filepath.Join(dir, stem+suffix+ext)
}
