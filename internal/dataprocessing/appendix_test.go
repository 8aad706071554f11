package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sipotcli/internal/errors"
	"sipotcli/internal/infrastructure"
)

type fakeSheets struct {
	sheets   map[string][][]string
	order    []string
	err      error
	closeErr error
}

func (f *fakeSheets) SheetNames() []string { return f.order }

func (f *fakeSheets) SheetRows(name string) ([][]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sheets[name], nil
}

func (f *fakeSheets) Close() error { return f.closeErr }

func newFakeSheets(sheets ...sheetFixture) *fakeSheets {
	f := &fakeSheets{sheets: make(map[string][][]string)}
	for _, s := range sheets {
		f.order = append(f.order, s.name)
		f.sheets[s.name] = s.rows
	}
	return f
}

func TestAppendixIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    string
		wantOK  bool
	}{
		{"parenthesized", []string{"EJERCICIO", CleanColumnName(bidderHeader)}, "TABLA_334271", true},
		{"bare", []string{BidderMarker + " TABLA_1"}, "TABLA_1", true},
		{"first match wins", []string{BidderMarker + " (A)", BidderMarker + " (B)"}, "A", true},
		{"marker without identifier", []string{BidderMarker}, "", true},
		{"no marker", []string{"EJERCICIO", "MONTO"}, "", false},
		{"marker must be cleaned", []string{bidderHeader}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AppendixIdentifier(tt.columns)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTableName(t *testing.T) {
	for _, name := range []string{"TABLA_334271", "Tabla_334271", "Tabla334271", " tabla-334 271 "} {
		assert.Equal(t, "tabla334271", NormalizeTableName(name), name)
	}
}

func TestResolveSheet(t *testing.T) {
	sheets := []string{"Reporte de Formatos", "Hidden_1", "Tabla_334271"}

	got, ok := ResolveSheet(sheets, "TABLA_334271")
	assert.True(t, ok)
	assert.Equal(t, "Tabla_334271", got)

	_, ok = ResolveSheet(sheets, "TABLA_999")
	assert.False(t, ok)

	_, ok = ResolveSheet(append(sheets, ""), "")
	assert.False(t, ok)
}

func TestAppendixExtractor_Extract(t *testing.T) {
	columns := []string{"EJERCICIO", BidderMarker + " (TABLA_334271)"}
	extractor := NewAppendixExtractor(infrastructure.DiscardLogger())

	t.Run("found", func(t *testing.T) {
		doc := newFakeSheets(
			sheetFixture{name: "Reporte de Formatos"},
			sheetFixture{name: "Tabla_334271", rows: [][]string{
				{"ID", "Nombre", "Nombre"},
				{"1", "ACME", "x"},
				{"", ""},
				{"2", "BETA"},
			}},
		)

		tbl, err := extractor.Extract(doc, columns)
		require.NoError(t, err)
		require.NotNil(t, tbl)
		assert.Equal(t, []string{"ID", "Nombre", "Nombre.1"}, tbl.Columns)
		assert.Equal(t, [][]string{{"1", "ACME", "x"}, {"2", "BETA", ""}}, tbl.Rows)
	})

	t.Run("no marker", func(t *testing.T) {
		tbl, err := extractor.Extract(newFakeSheets(), []string{"EJERCICIO", "MONTO"})
		assert.NoError(t, err)
		assert.Nil(t, tbl)
	})

	t.Run("no matching sheet", func(t *testing.T) {
		tbl, err := extractor.Extract(newFakeSheets(sheetFixture{name: "Tabla_1"}), columns)
		assert.Nil(t, tbl)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeAppendixNotFound))
	})

	t.Run("document without sheets", func(t *testing.T) {
		tbl, err := extractor.Extract(&Document{}, columns)
		assert.Nil(t, tbl)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeAppendixNotFound))
	})

	t.Run("sheet read failure", func(t *testing.T) {
		doc := newFakeSheets(sheetFixture{name: "Tabla_334271"})
		doc.err = errors.New("boom")

		tbl, err := extractor.Extract(doc, columns)
		assert.Nil(t, tbl)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeAppendixNotFound))
	})

	t.Run("only blank rows", func(t *testing.T) {
		doc := newFakeSheets(sheetFixture{name: "Tabla_334271", rows: [][]string{{"ID"}, {""}}})

		tbl, err := extractor.Extract(doc, columns)
		assert.NoError(t, err)
		assert.Nil(t, tbl)
	})
}
