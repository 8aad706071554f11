package dataprocessing

import (
	"time"

	"sipotcli/pkg/contracts/domain"
)

// FileOutcome classifies what happened to one document
type FileOutcome string

const (
	// OutcomeAccepted means the document contributed a primary table
	OutcomeAccepted FileOutcome = "accepted"
	// OutcomeRejected means the declared format did not match the contract type
	OutcomeRejected FileOutcome = "rejected"
	// OutcomeSkipped means the file is not a document kind we read
	OutcomeSkipped FileOutcome = "skipped"
	// OutcomeFailed means the document could not be read or normalized
	OutcomeFailed FileOutcome = "failed"
)

// FileResult is the output of processing one document
type FileResult struct {
	Path    string
	Outcome FileOutcome

	// Primary is set only when Outcome is OutcomeAccepted
	Primary *domain.Table
	// Appendix is the bidder detail table, when one was found
	Appendix *domain.Table

	// Err explains a non-accepted outcome
	Err error
	// AppendixErr is set when a referenced appendix could not be resolved.
	// It never changes Outcome.
	AppendixErr error

	Duration time.Duration
}
