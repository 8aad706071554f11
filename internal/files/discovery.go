package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// DocumentPatterns are the globs that select candidate documents below the input root
var DocumentPatterns = []string{"**/*.xls*", "**/*.csv"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Paths returns the path of every file, in order
func Paths(files []FileInfo) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}

// Discovery provides file discovery operations below a root directory
type Discovery struct {
	root   string
	logger *slog.Logger
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(root string, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{root: root, logger: logger}
}

// FindFilesByPattern returns the regular files matching any of the patterns,
// without duplicates, sorted by path. Patterns are relative to the root and
// use doublestar syntax.
func (d *Discovery) FindFilesByPattern(patterns ...string) ([]FileInfo, error) {
	fsys := os.DirFS(d.root)
	seen := make(map[string]bool)
	var matches []string

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
		// doublestar does not follow symbolic links by default
		found, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to glob %q under %s: %w", pattern, d.root, err)
		}
		for _, m := range found {
			if !seen[m] {
				seen[m] = true
				matches = append(matches, m)
			}
		}
	}
	sort.Strings(matches)

	files := make([]FileInfo, 0, len(matches))
	for _, m := range matches {
		path := filepath.Join(d.root, filepath.FromSlash(m))
		info, err := os.Stat(path)
		if err != nil {
			d.logger.Warn("Skipping file that disappeared during discovery",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		files = append(files, FileInfo{
			Path:    path,
			Name:    info.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// FindDocuments returns the spreadsheet and CSV files whose lower-cased base
// name contains keyword
func (d *Discovery) FindDocuments(keyword string) ([]FileInfo, error) {
	all, err := d.FindFilesByPattern(DocumentPatterns...)
	if err != nil {
		return nil, err
	}

	keyword = strings.ToLower(keyword)
	files := FilterByName(all, keyword)

	d.logger.Info("Documents discovered",
		slog.String("root", d.root),
		slog.String("keyword", keyword),
		slog.Int("candidates", len(all)),
		slog.Int("matched", len(files)))

	return files, nil
}

// FilterByName keeps the files whose lower-cased name contains substr
func FilterByName(files []FileInfo, substr string) []FileInfo {
	var out []FileInfo
	for _, f := range files {
		if strings.Contains(strings.ToLower(f.Name), substr) {
			out = append(out, f)
		}
	}
	return out
}

// TotalSize sums the size of files
func TotalSize(files []FileInfo) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}
