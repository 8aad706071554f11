package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"

	apperrors "sipotcli/internal/errors"
	"sipotcli/pkg/contracts/domain"
)

// BidderMarker identifies the column that references the bidder detail table.
// It is matched against cleaned (upper-cased) column names.
const BidderMarker = "PERSONAS FÍSICAS O MORALES CON PROPOSICIÓN U OFERTA"

// SheetIndex is a document that embeds named secondary tables
type SheetIndex interface {
	SheetNames() []string
	SheetRows(name string) ([][]string, error)
}

// AppendixIdentifier returns the secondary table identifier referenced by the
// first column containing BidderMarker, e.g. "TABLA_334271" from
// "... PERSONAS FÍSICAS O MORALES CON PROPOSICIÓN U OFERTA (TABLA_334271)".
// ok is false when no column carries the marker.
func AppendixIdentifier(columns []string) (identifier string, ok bool) {
	for _, c := range columns {
		_, after, found := strings.Cut(c, BidderMarker)
		if !found {
			continue
		}
		return strings.Trim(strings.TrimSpace(after), "()"), true
	}
	return "", false
}

// NormalizeTableName folds case and drops separators so that "TABLA_334271",
// "Tabla_334271" and "Tabla334271" compare equal
func NormalizeTableName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch r {
		case '_', '-', ' ':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ResolveSheet finds the first sheet whose normalized name equals the
// normalized identifier
func ResolveSheet(sheets []string, identifier string) (string, bool) {
	want := NormalizeTableName(identifier)
	if want == "" {
		return "", false
	}
	for _, s := range sheets {
		if NormalizeTableName(s) == want {
			return s, true
		}
	}
	return "", false
}

// AppendixExtractor pulls the bidder detail table out of a document
type AppendixExtractor struct {
	logger *slog.Logger
}

// NewAppendixExtractor creates an appendix extractor
func NewAppendixExtractor(logger *slog.Logger) *AppendixExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppendixExtractor{logger: logger}
}

// Extract locates and reads the secondary table referenced by columns.
// It returns (nil, nil) when no column references one or when the table has
// no non-blank rows, and an APPENDIX_NOT_FOUND error when the reference
// cannot be resolved against doc.
func (e *AppendixExtractor) Extract(doc SheetIndex, columns []string) (*domain.Table, error) {
	identifier, ok := AppendixIdentifier(columns)
	if !ok {
		return nil, nil
	}

	sheet, found := ResolveSheet(doc.SheetNames(), identifier)
	if !found {
		return nil, apperrors.NewAppendixNotFoundError(identifier)
	}

	rows, err := doc.SheetRows(sheet)
	if err != nil {
		appErr := apperrors.NewAppendixNotFoundError(identifier)
		appErr.Cause = fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		return nil, appErr
	}
	if len(rows) == 0 {
		return nil, nil
	}

	table := BuildTable(rows[0], rows[1:])
	table.DropEmptyRows()
	if table.Len() == 0 {
		return nil, nil
	}

	e.logger.Debug("Appendix table extracted",
		slog.String("identifier", identifier),
		slog.String("sheet", sheet),
		slog.Int("rows", table.Len()))

	return table, nil
}
