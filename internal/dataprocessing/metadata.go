package dataprocessing

import (
	"strings"

	apperrors "sipotcli/internal/errors"
	"sipotcli/pkg/contracts/domain"
)

// Metadata labels recognized in the document header block
const (
	LabelFormat = "Formato"
	LabelEntity = "Nombre del Sujeto Obligado"
)

// ParseMetadata turns (label, value) rows into a MetadataRecord.
// Labels are trimmed and lose a trailing colon; blank labels are ignored.
func ParseMetadata(rows [][]string) *domain.MetadataRecord {
	meta := domain.NewMetadataRecord()
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		label := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(row[0]), ":"))
		if label == "" {
			continue
		}
		value := ""
		if len(row) > 1 {
			value = row[1]
		}
		meta.Set(label, value)
	}
	return meta
}

// Admission is the outcome of a successful metadata check
type Admission struct {
	Format string
	// Entity is the responsible entity name; empty when the document does not declare one
	Entity string
}

// MetadataValidator admits documents whose declared format matches the run's contract type
type MetadataValidator struct {
	spec domain.ContractTypeSpec
}

// NewMetadataValidator creates a validator for one contract type
func NewMetadataValidator(spec domain.ContractTypeSpec) *MetadataValidator {
	return &MetadataValidator{spec: spec}
}

// Validate compares the declared format with the expected label byte for byte.
// A missing format label is a mismatch.
func (v *MetadataValidator) Validate(meta *domain.MetadataRecord) (Admission, error) {
	format, ok := meta.Get(LabelFormat)
	if !ok || format != v.spec.ExpectedFormat {
		return Admission{}, apperrors.NewFormatMismatchError(v.spec.ExpectedFormat, format)
	}

	entity, _ := meta.Get(LabelEntity)
	if strings.TrimSpace(entity) == "" {
		entity = ""
	}
	return Admission{Format: format, Entity: entity}, nil
}
