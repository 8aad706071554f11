package dataprocessing

import (
	"path/filepath"
	"regexp"
	"strings"

	apperrors "sipotcli/internal/errors"
	"sipotcli/pkg/contracts/domain"
)

// Names of the columns injected into every normalized table
const (
	EntityColumn = "NOMBRE DEL SUJETO OBLIGADO"
	StateColumn  = "ESTADO"
)

const (
	// StatesDir is the directory whose child names the state of every file below it
	StatesDir = "estados"

	// InjectedColumnIndex is where injected columns are placed, right after the first original column
	InjectedColumnIndex = 1

	// MinColumns is the narrowest table the normalizer accepts
	MinColumns = 2
)

var repeatedSpaces = regexp.MustCompile(` {2,}`)

// CleanColumnName canonicalizes a header: upper case, no commas, single
// spaces, no surrounding whitespace. Applying it twice equals applying it once.
func CleanColumnName(name string) string {
	s := strings.TrimSpace(name)
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, ",", "")
	s = repeatedSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// StateFromPath returns the upper-cased path segment following the first
// segment named "estados", if there is one.
func StateFromPath(path string) (string, bool) {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for i, p := range parts {
		if p != StatesDir {
			continue
		}
		if i+1 < len(parts) && parts[i+1] != "" {
			return strings.ToUpper(parts[i+1]), true
		}
		return "", false
	}
	return "", false
}

// ColumnNormalizer cleans column names, injects context columns and places them canonically
type ColumnNormalizer struct{}

// NewColumnNormalizer creates a column normalizer
func NewColumnNormalizer() *ColumnNormalizer {
	return &ColumnNormalizer{}
}

// Normalize returns a cleaned copy of table with the entity and state columns
// injected (empty values are not injected) and moved to InjectedColumnIndex
// in entity-then-state order. Tables that get no injected column keep their
// column order.
func (n *ColumnNormalizer) Normalize(table *domain.Table, entity, state string) (*domain.Table, error) {
	if table.Width() < MinColumns {
		return nil, apperrors.NewInsufficientColumnsError(table.Width(), MinColumns)
	}

	out := table.Clone()
	cleaned := make([]string, len(out.Columns))
	for i, c := range out.Columns {
		cleaned[i] = CleanColumnName(c)
	}
	out.Columns = UniqueNames(cleaned)

	var injected []string
	if entity != "" {
		out.SetColumn(EntityColumn, entity)
		injected = append(injected, EntityColumn)
	}
	if state != "" {
		out.SetColumn(StateColumn, state)
		injected = append(injected, StateColumn)
	}

	if len(injected) == 0 {
		return out, nil
	}
	return out.Select(canonicalOrder(out.Columns, injected))
}

// canonicalOrder removes the injected names from columns and reinserts them at InjectedColumnIndex
func canonicalOrder(columns, injected []string) []string {
	isInjected := make(map[string]bool, len(injected))
	for _, c := range injected {
		isInjected[c] = true
	}

	rest := make([]string, 0, len(columns))
	for _, c := range columns {
		if !isInjected[c] {
			rest = append(rest, c)
		}
	}

	at := InjectedColumnIndex
	if at > len(rest) {
		at = len(rest)
	}

	order := make([]string, 0, len(columns))
	order = append(order, rest[:at]...)
	order = append(order, injected...)
	order = append(order, rest[at:]...)
	return order
}
