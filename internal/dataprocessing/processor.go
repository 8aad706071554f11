package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	apperrors "sipotcli/internal/errors"
	"sipotcli/pkg/contracts/domain"
)

// Processor runs the per-document steps: read, admit, normalize and, for
// contract types that carry one, extract the appendix
type Processor struct {
	spec       domain.ContractTypeSpec
	reader     *Reader
	validator  *MetadataValidator
	normalizer *ColumnNormalizer
	appendix   *AppendixExtractor
	logger     *slog.Logger
}

// NewProcessor creates a processor for one contract type
func NewProcessor(spec domain.ContractTypeSpec, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		spec:       spec,
		reader:     NewReader(logger),
		validator:  NewMetadataValidator(spec),
		normalizer: NewColumnNormalizer(),
		appendix:   NewAppendixExtractor(logger),
		logger:     logger,
	}
}

// ProcessFile turns one document into a FileResult. It never panics on bad
// input and never returns a partially normalized table.
func (p *Processor) ProcessFile(ctx context.Context, path string) FileResult {
	start := time.Now()
	res := p.process(ctx, path)
	res.Path = path
	res.Duration = time.Since(start)
	return res
}

func (p *Processor) process(ctx context.Context, path string) FileResult {
	doc, err := p.reader.Read(ctx, path)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrTypeUnsupportedExtension) {
			return FileResult{Outcome: OutcomeSkipped, Err: err}
		}
		return FileResult{Outcome: OutcomeFailed, Err: err}
	}
	defer p.closeDocument(ctx, doc)

	admission, err := p.validator.Validate(ParseMetadata(doc.Metadata))
	if err != nil {
		return FileResult{Outcome: OutcomeRejected, Err: err}
	}

	state, _ := StateFromPath(path)
	primary, err := p.normalizer.Normalize(doc.Data, admission.Entity, state)
	if err != nil {
		return FileResult{Outcome: OutcomeFailed, Err: err}
	}

	res := FileResult{Outcome: OutcomeAccepted, Primary: primary}
	if !p.spec.HasAppendix {
		return res
	}

	appendix, err := p.appendix.Extract(doc, primary.Columns)
	if err != nil {
		res.AppendixErr = err
		return res
	}
	res.Appendix = appendix
	return res
}

func (p *Processor) closeDocument(ctx context.Context, doc *Document) {
	if err := doc.Close(); err != nil {
		p.logger.DebugContext(ctx, "Failed to close document",
			slog.String("path", doc.Path),
			slog.String("error", err.Error()))
	}
}
