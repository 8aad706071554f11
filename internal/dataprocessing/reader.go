package dataprocessing

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	apperrors "sipotcli/internal/errors"
	"sipotcli/pkg/contracts/domain"
)

// Document is a source file split into its metadata block and data table.
// Spreadsheet documents keep the workbook open so other sheets can be
// resolved later; call Close when done.
type Document struct {
	Path     string
	Kind     domain.DocumentKind
	Metadata [][]string
	Data     *domain.Table

	workbook workbook
}

// workbook is an open spreadsheet whose sheets can be read by name
type workbook interface {
	SheetNames() []string
	SheetRows(name string) ([][]string, error)
	Close() error
}

// SheetNames lists the tables embedded in the document. Delimited text has none.
func (d *Document) SheetNames() []string {
	if d.workbook == nil {
		return nil
	}
	return d.workbook.SheetNames()
}

// SheetRows returns the raw rows of an embedded table
func (d *Document) SheetRows(name string) ([][]string, error) {
	if d.workbook == nil {
		return nil, fmt.Errorf("%s has no embedded tables", d.Kind)
	}
	return d.workbook.SheetRows(name)
}

// Close releases the underlying workbook, if any
func (d *Document) Close() error {
	if d.workbook == nil {
		return nil
	}
	err := d.workbook.Close()
	d.workbook = nil
	return err
}

// xlsxWorkbook reads Office Open XML workbooks
type xlsxWorkbook struct {
	file *excelize.File
}

func (w xlsxWorkbook) SheetNames() []string { return w.file.GetSheetList() }

func (w xlsxWorkbook) SheetRows(name string) ([][]string, error) { return w.file.GetRows(name) }

func (w xlsxWorkbook) Close() error { return w.file.Close() }

// Reader extracts metadata and data from SIPOT documents
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a document reader
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// Read opens path and splits it according to the layout of its kind.
// Unknown extensions yield an UNSUPPORTED_EXTENSION error; any read or
// structure failure yields UNREADABLE_DOCUMENT.
func (r *Reader) Read(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kind := domain.KindFromPath(path)
	layout, ok := domain.LayoutFor(kind)
	if !ok {
		return nil, apperrors.NewUnsupportedExtensionError(path)
	}

	var (
		doc *Document
		err error
	)
	switch kind {
	case domain.DocumentKindSpreadsheet:
		doc, err = r.readSpreadsheet(path, layout)
	case domain.DocumentKindDelimited:
		doc, err = r.readDelimited(path, layout)
	}
	if err != nil {
		return nil, apperrors.NewUnreadableDocumentError(path, err)
	}

	r.logger.DebugContext(ctx, "Document read",
		slog.String("path", path),
		slog.String("kind", string(kind)),
		slog.Int("columns", doc.Data.Width()),
		slog.Int("rows", doc.Data.Len()))

	return doc, nil
}

func (r *Reader) readSpreadsheet(path string, layout domain.Layout) (*Document, error) {
	book, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}

	sheets := book.SheetNames()
	if len(sheets) == 0 {
		book.Close()
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := book.SheetRows(sheets[0])
	if err != nil {
		book.Close()
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	meta, data, err := splitRows(rows, layout)
	if err != nil {
		book.Close()
		return nil, err
	}

	return &Document{
		Path:     path,
		Kind:     domain.DocumentKindSpreadsheet,
		Metadata: meta,
		Data:     data,
		workbook: book,
	}, nil
}

// openWorkbook picks the legacy BIFF reader for OLE2 files and excelize for everything else
func openWorkbook(path string) (workbook, error) {
	legacy, err := isLegacyWorkbook(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	if legacy {
		book, err := openLegacyWorkbook(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open legacy workbook: %w", err)
		}
		return book, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return xlsxWorkbook{file: f}, nil
}

func (r *Reader) readDelimited(path string, layout domain.Layout) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var src io.Reader = f
	if layout.Encoding == domain.EncodingLatin1 {
		src = charmap.ISO8859_1.NewDecoder().Reader(f)
	}

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse delimited text: %w", err)
	}

	meta, data, err := splitRows(rows, layout)
	if err != nil {
		return nil, err
	}

	return &Document{
		Path:     path,
		Kind:     domain.DocumentKindDelimited,
		Metadata: meta,
		Data:     data,
	}, nil
}

// splitRows cuts the metadata block and the data table out of raw rows
func splitRows(rows [][]string, layout domain.Layout) ([][]string, *domain.Table, error) {
	if len(rows) <= layout.HeaderRow {
		return nil, nil, fmt.Errorf("expected header at row %d, document has %d rows", layout.HeaderRow, len(rows))
	}

	n := layout.MetadataRows
	if n > len(rows) {
		n = len(rows)
	}
	meta := make([][]string, 0, n)
	for _, row := range rows[:n] {
		cells := make([]string, layout.MetadataCols)
		copy(cells, row)
		meta = append(meta, cells)
	}

	return meta, BuildTable(rows[layout.HeaderRow], rows[layout.HeaderRow+1:]), nil
}

// BuildTable turns a raw header and raw rows into a Table. Blank header cells
// become "Unnamed: <index>", repeated names get ".1", ".2"... suffixes and the
// table is widened to its longest row. Blank rows are kept.
func BuildTable(header []string, rows [][]string) *domain.Table {
	width := len(header)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	names := make([]string, width)
	for i := range names {
		if i < len(header) && strings.TrimSpace(header[i]) != "" {
			names[i] = header[i]
		} else {
			names[i] = fmt.Sprintf("Unnamed: %d", i)
		}
	}

	return domain.NewTable(UniqueNames(names), rows)
}

// UniqueNames suffixes repeated names with ".1", ".2"... keeping the first as is.
// Generated names never collide with a name already present in the input.
func UniqueNames(names []string) []string {
	reserved := make(map[string]bool, len(names))
	for _, n := range names {
		reserved[n] = true
	}

	seen := make(map[string]bool, len(names))
	counts := make(map[string]int)
	out := make([]string, len(names))
	for i, n := range names {
		if !seen[n] {
			seen[n] = true
			out[i] = n
			continue
		}
		for {
			counts[n]++
			candidate := fmt.Sprintf("%s.%d", n, counts[n])
			if !seen[candidate] && !reserved[candidate] {
				seen[candidate] = true
				out[i] = candidate
				break
			}
		}
	}
	return out
}
