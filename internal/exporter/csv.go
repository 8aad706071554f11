package exporter

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "sipotcli/internal/errors"
	"sipotcli/internal/files"
	"sipotcli/pkg/contracts/domain"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	files  *files.Manager
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		files:  files.NewManager(logger),
		logger: logger,
	}
}

// WriteOptions holds what a CSV file is written from
type WriteOptions struct {
	Headers []string
	Records [][]string
}

// WriteCSV writes data to a CSV file with every field quoted, replacing any
// existing file. Missing parent directories are created.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	dir := filepath.Dir(filePath)
	if err := w.files.EnsureDirectory(dir); err != nil {
		return apperrors.NewStorageError("failed to create directory", err).WithContext("path", dir)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return apperrors.NewStorageError("failed to open file", err).WithContext("path", filePath)
	}

	if err := writeRecords(file, options); err != nil {
		file.Close()
		return apperrors.NewStorageError("failed to write CSV", err).WithContext("path", filePath)
	}
	if err := file.Close(); err != nil {
		return apperrors.NewStorageError("failed to close file", err).WithContext("path", filePath)
	}
	return nil
}

func writeRecords(out io.Writer, options WriteOptions) error {
	writer := newQuoteAllWriter(out)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteTable writes a table with a header row and every field quoted
func (w *CSVWriter) WriteTable(filePath string, table *domain.Table) error {
	if table == nil {
		return apperrors.NewAppValidationError("no table to write").WithContext("path", filePath)
	}
	return w.WriteCSV(filePath, WriteOptions{
		Headers: table.Columns,
		Records: table.Rows,
	})
}

// quoteAllWriter writes RFC 4180 records with every field quoted.
// Embedded quotes are doubled and line breaks are kept inside the quotes.
type quoteAllWriter struct {
	w   *bufio.Writer
	err error
}

func newQuoteAllWriter(out io.Writer) *quoteAllWriter {
	return &quoteAllWriter{w: bufio.NewWriter(out)}
}

func (q *quoteAllWriter) Write(record []string) error {
	if q.err != nil {
		return q.err
	}
	for i, field := range record {
		if i > 0 {
			q.w.WriteByte(',')
		}
		q.w.WriteByte('"')
		q.w.WriteString(strings.ReplaceAll(field, `"`, `""`))
		q.w.WriteByte('"')
	}
	_, q.err = q.w.WriteString("\n")
	return q.err
}

func (q *quoteAllWriter) Flush() {
	if q.err == nil {
		q.err = q.w.Flush()
	}
}

func (q *quoteAllWriter) Error() error {
	return q.err
}
