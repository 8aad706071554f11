package domain

import (
	"fmt"
	"strings"
)

// ContractType identifies the procurement category processed by a run
type ContractType string

const (
	ContractTypeDirectAward ContractType = "adjudicaciones"
	ContractTypeBidding     ContractType = "licitaciones"
)

// Expected values of the "Formato" metadata label, one per contract type
const (
	FormatDirectAward = "Procedimientos de adjudicación directa"
	FormatBidding     = "Procedimientos de licitación pública e invitación a cuando menos tres personas"
)

// ContractTypeSpec is the static configuration selected once per run
type ContractTypeSpec struct {
	Type           ContractType `json:"type" yaml:"type"`
	ExpectedFormat string       `json:"expected_format" yaml:"expected_format"`
	HasAppendix    bool         `json:"has_appendix" yaml:"has_appendix"`
}

// Keyword is the substring a source file name must contain to belong to this contract type
func (s ContractTypeSpec) Keyword() string {
	return string(s.Type)
}

var contractSpecs = map[ContractType]ContractTypeSpec{
	ContractTypeDirectAward: {
		Type:           ContractTypeDirectAward,
		ExpectedFormat: FormatDirectAward,
		HasAppendix:    false,
	},
	ContractTypeBidding: {
		Type:           ContractTypeBidding,
		ExpectedFormat: FormatBidding,
		HasAppendix:    true,
	},
}

// ContractTypes returns the supported contract types in a stable order
func ContractTypes() []ContractType {
	return []ContractType{ContractTypeDirectAward, ContractTypeBidding}
}

// ContractTypeNames lists the supported contract types as "a, b"
func ContractTypeNames() string {
	names := make([]string, 0, len(contractSpecs))
	for _, ct := range ContractTypes() {
		names = append(names, string(ct))
	}
	return strings.Join(names, ", ")
}

// ParseContractType converts user input into a ContractType
func ParseContractType(s string) (ContractType, error) {
	ct := ContractType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := contractSpecs[ct]; !ok {
		return "", fmt.Errorf("unknown contract type %q (want one of %s)", s, ContractTypeNames())
	}
	return ct, nil
}

// SpecFor returns the ContractTypeSpec for a contract type
func SpecFor(ct ContractType) (ContractTypeSpec, error) {
	spec, ok := contractSpecs[ct]
	if !ok {
		return ContractTypeSpec{}, fmt.Errorf("unknown contract type %q", ct)
	}
	return spec, nil
}
