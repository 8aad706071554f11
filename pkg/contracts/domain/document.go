package domain

import (
	"path/filepath"
	"strings"
)

// DocumentKind is the file family of a source document
type DocumentKind string

const (
	DocumentKindUnknown     DocumentKind = "unknown"
	DocumentKindSpreadsheet DocumentKind = "spreadsheet"
	DocumentKindDelimited   DocumentKind = "delimited"
)

// Encoding names used by Layout
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

// Layout describes where metadata and data live inside a document of a given kind.
// HeaderRow is the zero-based row index holding the data table header.
type Layout struct {
	HeaderRow    int
	MetadataRows int
	MetadataCols int
	Encoding     string
}

var layouts = map[DocumentKind]Layout{
	DocumentKindSpreadsheet: {HeaderRow: 5, MetadataRows: 4, MetadataCols: 2, Encoding: EncodingUTF8},
	DocumentKindDelimited:   {HeaderRow: 3, MetadataRows: 4, MetadataCols: 2, Encoding: EncodingLatin1},
}

// KindFromPath selects the document kind from the file extension
func KindFromPath(path string) DocumentKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls", ".xlsx":
		return DocumentKindSpreadsheet
	case ".csv":
		return DocumentKindDelimited
	default:
		return DocumentKindUnknown
	}
}

// LayoutFor returns the fixed layout of a document kind
func LayoutFor(kind DocumentKind) (Layout, bool) {
	l, ok := layouts[kind]
	return l, ok
}

// MetadataRecord is the label/value block found at the top of a source document.
// A repeated label overwrites the earlier value.
type MetadataRecord struct {
	values map[string]string
}

// NewMetadataRecord creates an empty metadata record
func NewMetadataRecord() *MetadataRecord {
	return &MetadataRecord{values: make(map[string]string)}
}

// Set stores a value under label
func (m *MetadataRecord) Set(label, value string) {
	m.values[label] = value
}

// Get returns the value stored under label
func (m *MetadataRecord) Get(label string) (string, bool) {
	v, ok := m.values[label]
	return v, ok
}
