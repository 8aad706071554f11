package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"sipotcli/pkg/contracts/domain"
)

const bidderHeader = "Personas físicas o morales con proposición u oferta (Tabla_334271)"

// legacyWorkbookFixture is a BIFF8 workbook laid out like spreadsheetRows, with
// a "Hidden_1" sheet and a "Tabla_334271" bidder sheet
const legacyWorkbookFixture = "testdata/licitaciones_legacy.xls"

// writeWorkbook saves a workbook whose first sheet holds main and whose other
// sheets are taken from extra, in the given order
func writeWorkbook(t *testing.T, path string, main [][]string, extra ...sheetFixture) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Reporte de Formatos"))
	fillSheet(t, f, "Reporte de Formatos", main)
	for _, s := range extra {
		_, err := f.NewSheet(s.name)
		require.NoError(t, err)
		fillSheet(t, f, s.name, s.rows)
	}
	require.NoError(t, f.SaveAs(path))
}

type sheetFixture struct {
	name string
	rows [][]string
}

func fillSheet(t *testing.T, f *excelize.File, name string, rows [][]string) {
	t.Helper()
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		require.NoError(t, f.SetSheetRow(name, cell, &values))
	}
}

// writeLatin1CSV writes rows as ISO-8859-1 encoded CSV
func writeLatin1CSV(t *testing.T, path string, rows [][]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	var buf bytes.Buffer
	w := csv.NewWriter(charmap.ISO8859_1.NewEncoder().Writer(&buf))
	require.NoError(t, w.WriteAll(rows))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

// spreadsheetRows lays out a SIPOT spreadsheet: four metadata rows, a blank
// row, the header at row 5 and then the data
func spreadsheetRows(format, entity string, header []string, data ...[]string) [][]string {
	rows := [][]string{
		{"Nombre del Sujeto Obligado:", entity},
		{"Formato", format},
		{"Periodo", "2021"},
		{"Fecha de actualización", "31/03/2021"},
		{},
		header,
	}
	return append(rows, data...)
}

// csvRows lays out a SIPOT CSV: three metadata rows, the header at row 3 and then the data
func csvRows(format, entity string, header []string, data ...[]string) [][]string {
	rows := [][]string{
		{"Nombre del Sujeto Obligado", entity},
		{"Formato:", format},
		{"Periodo", "2021"},
		header,
	}
	return append(rows, data...)
}

// copyFixture copies a testdata file to dst
func copyFixture(t *testing.T, src, dst string) {
	t.Helper()
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0755))
	require.NoError(t, os.WriteFile(dst, data, 0644))
}

func biddingSpec(t *testing.T) domain.ContractTypeSpec {
	t.Helper()
	spec, err := domain.SpecFor(domain.ContractTypeBidding)
	require.NoError(t, err)
	return spec
}

func directAwardSpec(t *testing.T) domain.ContractTypeSpec {
	t.Helper()
	spec, err := domain.SpecFor(domain.ContractTypeDirectAward)
	require.NoError(t, err)
	return spec
}
