package dataprocessing

import (
	"sipotcli/pkg/contracts/domain"
)

// AggregateResult holds the final tables of a run
type AggregateResult struct {
	// Primary is nil when no document was accepted
	Primary *domain.Table
	// Appendix is nil when no document contributed appendix rows
	Appendix *domain.Table

	PrimaryDocuments   int
	PrimaryInputRows   int
	PrimaryDuplicates  int
	AppendixDocuments  int
	AppendixInputRows  int
	AppendixDuplicates int
}

// Aggregator accumulates per-document tables and merges them at the end of a run
type Aggregator struct {
	primary  []*domain.Table
	appendix []*domain.Table
}

// NewAggregator creates an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// AddPrimary appends one accepted document's normalized table
func (a *Aggregator) AddPrimary(t *domain.Table) {
	if t != nil {
		a.primary = append(a.primary, t)
	}
}

// AddAppendix appends one document's appendix table
func (a *Aggregator) AddAppendix(t *domain.Table) {
	if t != nil {
		a.appendix = append(a.appendix, t)
	}
}

// Result concatenates each batch with column-union semantics and removes
// rows duplicated across all columns
func (a *Aggregator) Result() AggregateResult {
	res := AggregateResult{
		PrimaryDocuments:  len(a.primary),
		AppendixDocuments: len(a.appendix),
	}

	if len(a.primary) > 0 {
		res.Primary = domain.Concat(a.primary...)
		res.PrimaryInputRows = res.Primary.Len()
		res.PrimaryDuplicates = res.Primary.DropDuplicates()
	}

	if len(a.appendix) > 0 {
		res.Appendix = domain.Concat(a.appendix...)
		res.AppendixInputRows = res.Appendix.Len()
		res.AppendixDuplicates = res.Appendix.DropDuplicates()
	}

	return res
}
