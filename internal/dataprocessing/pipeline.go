package dataprocessing

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	apperrors "sipotcli/internal/errors"
	"sipotcli/internal/infrastructure"
	"sipotcli/pkg/contracts/domain"
)

// Table labels used in metrics and logs
const (
	TablePrimary  = "primary"
	TableAppendix = "appendix"
)

// Options configures a Pipeline. Zero values are usable: one worker, the
// default logger, no progress, no tracing and no metrics.
type Options struct {
	Workers  int
	Logger   *slog.Logger
	Reporter Reporter
	Tracer   trace.Tracer
	Metrics  *infrastructure.ETLMetrics
}

// RunResult is everything a run produced
type RunResult struct {
	AggregateResult

	// Files holds one result per input path, in input order
	Files []FileResult
	// Outcomes counts documents per outcome
	Outcomes map[FileOutcome]int
	// AppendixMisses counts accepted documents whose appendix reference did not resolve
	AppendixMisses int
}

// Empty reports whether no document was accepted
func (r *RunResult) Empty() bool {
	return r.Primary == nil
}

// Pipeline processes a list of documents and aggregates their tables
type Pipeline struct {
	processor *Processor
	workers   int
	logger    *slog.Logger
	reporter  Reporter
	tracer    trace.Tracer
	metrics   *infrastructure.ETLMetrics
}

// NewPipeline creates a pipeline for one contract type
func NewPipeline(spec domain.ContractTypeSpec, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(infrastructure.ServiceName)
	}

	return &Pipeline{
		processor: NewProcessor(spec, logger),
		workers:   workers,
		logger:    logger,
		reporter:  reporter,
		tracer:    tracer,
		metrics:   opts.Metrics,
	}
}

// Run processes paths with up to Workers documents in flight and folds the
// results into the aggregator in input order, so the output does not depend
// on the worker count. Per-document failures are logged and counted; only
// context cancellation makes Run return an error.
func (p *Pipeline) Run(ctx context.Context, paths []string) (*RunResult, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := p.tracer.Start(ctx, "etl.run",
		trace.WithAttributes(attribute.Int("etl.documents", len(paths))))
	defer span.End()

	results := make([]FileResult, len(paths))

	p.reporter.Start(len(paths))
	var reportMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.processTraced(gctx, path)

			reportMu.Lock()
			p.reporter.Advance(results[i])
			reportMu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	p.reporter.Finish()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	run := &RunResult{
		Files:    results,
		Outcomes: make(map[FileOutcome]int),
	}
	agg := NewAggregator()
	for _, res := range results {
		run.Outcomes[res.Outcome]++
		if res.AppendixErr != nil {
			run.AppendixMisses++
		}
		p.logOutcome(ctx, res)
		p.metrics.RecordDocument(ctx, string(res.Outcome), res.Duration)

		agg.AddPrimary(res.Primary)
		agg.AddAppendix(res.Appendix)
	}
	run.AggregateResult = agg.Result()

	p.metrics.RecordRows(ctx, TablePrimary, run.Primary.Len())
	p.metrics.RecordRows(ctx, TableAppendix, run.Appendix.Len())
	p.metrics.RecordDuplicates(ctx, TablePrimary, run.PrimaryDuplicates)
	p.metrics.RecordDuplicates(ctx, TableAppendix, run.AppendixDuplicates)

	if run.Empty() {
		err := apperrors.NewEmptyResultSetError()
		infrastructure.WithError(p.logger, err).WarnContext(ctx, "No document produced primary records",
			slog.String("error_type", string(err.Type)))
	}
	p.logSummary(ctx, run)

	span.SetAttributes(
		attribute.Int("etl.accepted", run.Outcomes[OutcomeAccepted]),
		attribute.Int("etl.primary_rows", run.Primary.Len()),
		attribute.Int("etl.appendix_rows", run.Appendix.Len()),
	)
	return run, nil
}

func (p *Pipeline) processTraced(ctx context.Context, path string) FileResult {
	ctx, span := p.tracer.Start(ctx, "etl.document",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("document.path", path)))
	defer span.End()

	res := p.processor.ProcessFile(ctx, path)

	span.SetAttributes(
		attribute.String("document.outcome", string(res.Outcome)),
		attribute.Int("document.rows", res.Primary.Len()),
	)
	if res.Outcome == OutcomeFailed {
		infrastructure.RecordError(ctx, res.Err)
		span.SetStatus(codes.Error, string(apperrors.TypeOf(res.Err)))
	}
	return res
}

// logOutcome logs one document at the level its outcome deserves
func (p *Pipeline) logOutcome(ctx context.Context, res FileResult) {
	logger := p.logger.With(slog.String("path", res.Path))

	switch res.Outcome {
	case OutcomeSkipped:
		logger.DebugContext(ctx, "Skipping unsupported file")
	case OutcomeRejected:
		infrastructure.WithError(logger, res.Err).WarnContext(ctx, "Document format does not match contract type")
	case OutcomeFailed:
		infrastructure.WithError(logger, res.Err).ErrorContext(ctx, "Document processing failed",
			slog.String("error_type", string(apperrors.TypeOf(res.Err))))
	case OutcomeAccepted:
		logger.DebugContext(ctx, "Document accepted",
			slog.Int("rows", res.Primary.Len()),
			slog.Int("appendix_rows", res.Appendix.Len()))
	}

	if res.AppendixErr != nil {
		infrastructure.WithError(logger, res.AppendixErr).DebugContext(ctx, "Appendix table not extracted")
	}
}

func (p *Pipeline) logSummary(ctx context.Context, run *RunResult) {
	p.logger.InfoContext(ctx, "ETL run summary",
		slog.Int("files", len(run.Files)),
		slog.Int("accepted", run.Outcomes[OutcomeAccepted]),
		slog.Int("rejected", run.Outcomes[OutcomeRejected]),
		slog.Int("failed", run.Outcomes[OutcomeFailed]),
		slog.Int("skipped", run.Outcomes[OutcomeSkipped]),
		slog.Int("appendix_misses", run.AppendixMisses),
		slog.Int("primary_rows", run.Primary.Len()),
		slog.Int("primary_duplicates_removed", run.PrimaryDuplicates),
		slog.Int("appendix_rows", run.Appendix.Len()),
		slog.Int("appendix_duplicates_removed", run.AppendixDuplicates),
	)
}
