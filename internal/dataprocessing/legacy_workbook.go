package dataprocessing

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/extrame/xls"
)

// oleSignature starts every OLE2 compound file, the container of BIFF (.xls) workbooks
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// isLegacyWorkbook reports whether path holds an OLE2 compound file
func isLegacyWorkbook(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, len(oleSignature))
	if _, err := io.ReadFull(f, head); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(head, oleSignature), nil
}

// legacyWorkbook reads BIFF workbooks. Every sheet is parsed when the
// workbook is opened, so nothing stays open afterwards.
type legacyWorkbook struct {
	names  []string
	sheets map[string]*xls.WorkSheet
}

// openLegacyWorkbook parses a BIFF workbook. The parser panics on some
// malformed records; those panics are returned as errors.
func openLegacyWorkbook(path string) (book *legacyWorkbook, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			book, err = nil, fmt.Errorf("malformed workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb == nil {
		return nil, fmt.Errorf("no workbook stream found")
	}

	book = &legacyWorkbook{sheets: make(map[string]*xls.WorkSheet)}
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		book.names = append(book.names, sheet.Name)
		book.sheets[sheet.Name] = sheet
	}
	return book, nil
}

func (w *legacyWorkbook) SheetNames() []string {
	return append([]string(nil), w.names...)
}

// SheetRows returns the cell text of a sheet row by row. Like excelize, it
// trims trailing empty cells of each row and trailing empty rows of the sheet.
func (w *legacyWorkbook) SheetRows(name string) (rows [][]string, err error) {
	sheet, ok := w.sheets[name]
	if !ok {
		return nil, fmt.Errorf("sheet %s does not exist", name)
	}

	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("malformed sheet %q: %v", name, r)
		}
	}()

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, trimTrailingEmpty(cells))
	}

	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows, nil
}

func (w *legacyWorkbook) Close() error {
	return nil
}

func trimTrailingEmpty(cells []string) []string {
	n := len(cells)
	for n > 0 && cells[n-1] == "" {
		n--
	}
	if n == 0 {
		return nil
	}
	return cells[:n]
}
