package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Table is an in-memory tabular result with named columns.
// Every row has exactly len(Columns) cells; a missing value is the empty string.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewTable creates a table, padding or truncating rows to the column count
func NewTable(columns []string, rows [][]string) *Table {
	t := &Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, fitRow(r, len(columns)))
	}
	return t
}

func fitRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Width returns the number of columns
func (t *Table) Width() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Index returns the position of a column, or -1
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	return NewTable(t.Columns, t.Rows)
}

// SetColumn fills column name with value on every row.
// An existing column is overwritten in place, otherwise the column is appended.
func (t *Table) SetColumn(name, value string) {
	idx := t.Index(name)
	if idx < 0 {
		t.Columns = append(t.Columns, name)
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], value)
		}
		return
	}
	for i := range t.Rows {
		t.Rows[i][idx] = value
	}
}

// Select returns a new table holding the named columns in the given order
func (t *Table) Select(columns []string) (*Table, error) {
	positions := make([]int, len(columns))
	for i, c := range columns {
		idx := t.Index(c)
		if idx < 0 {
			return nil, fmt.Errorf("column %q not found", c)
		}
		positions[i] = idx
	}
	out := &Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, r := range t.Rows {
		row := make([]string, len(positions))
		for j, p := range positions {
			row[j] = r[p]
		}
		out.Rows[i] = row
	}
	return out, nil
}

// DropEmptyRows removes rows in which every cell is blank
func (t *Table) DropEmptyRows() {
	kept := t.Rows[:0]
	for _, r := range t.Rows {
		if !IsBlankRow(r) {
			kept = append(kept, r)
		}
	}
	t.Rows = kept
}

// IsBlankRow reports whether every cell of row is empty after trimming
func IsBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Concat stacks tables vertically. The result columns are the union of all
// input columns in first-seen order; cells for columns a table lacks are empty.
// Nil tables are ignored.
func Concat(tables ...*Table) *Table {
	out := &Table{}
	positions := make(map[string]int)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			if _, ok := positions[c]; !ok {
				positions[c] = len(out.Columns)
				out.Columns = append(out.Columns, c)
			}
		}
	}
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, r := range t.Rows {
			row := make([]string, len(out.Columns))
			for j, c := range t.Columns {
				row[positions[c]] = r[j]
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// DropDuplicates removes rows equal to an earlier row across all columns,
// keeping the first occurrence, and returns the number of rows removed.
func (t *Table) DropDuplicates() int {
	seen := make(map[string]struct{}, len(t.Rows))
	kept := t.Rows[:0]
	for _, r := range t.Rows {
		key := rowKey(r)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, r)
	}
	removed := len(t.Rows) - len(kept)
	t.Rows = kept
	return removed
}

// rowKey length-prefixes every cell so distinct rows never share a key
func rowKey(row []string) string {
	var b strings.Builder
	for _, c := range row {
		b.WriteString(strconv.Itoa(len(c)))
		b.WriteByte(':')
		b.WriteString(c)
	}
	return b.String()
}
