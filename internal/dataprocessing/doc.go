// Package dataprocessing turns SIPOT procurement reports into two tables:
// one canonical primary table and one bidder detail appendix.
//
// Each document goes through the same steps:
//
//	path → Reader → MetadataValidator → ColumnNormalizer → [AppendixExtractor]
//
// and every accepted document's tables are folded into an Aggregator, which
// concatenates them with column-union semantics and removes exact duplicates.
//
// # Usage
//
//	spec, _ := domain.SpecFor(domain.ContractTypeBidding)
//	pipeline := dataprocessing.NewPipeline(spec, dataprocessing.Options{
//	    Workers: 4,
//	    Logger:  logger,
//	})
//	run, err := pipeline.Run(ctx, paths)
//	if err != nil {
//	    return err
//	}
//	if run.Empty() {
//	    // nothing was accepted
//	}
//
// # Error Handling
//
// Per-document problems never stop a run. They are reported on the
// FileResult as *errors.AppError values:
//
//   - UNSUPPORTED_EXTENSION for files that are not spreadsheets or CSV
//   - UNREADABLE_DOCUMENT for I/O and structure failures
//   - FORMAT_MISMATCH when the declared format is not the requested one
//   - INSUFFICIENT_COLUMNS for tables too narrow to normalize
//   - APPENDIX_NOT_FOUND when a referenced bidder table cannot be resolved
//
// Only context cancellation makes Pipeline.Run fail.
package dataprocessing
