package dataprocessing

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"sipotcli/internal/config"
	apperrors "sipotcli/internal/errors"
	"sipotcli/internal/infrastructure"
	"sipotcli/internal/shared/testutil"
	"sipotcli/pkg/contracts/domain"
)

var scenarioHeader = []string{"Ejercicio", "Número de expediente"}

// writeScenario lays out two bidding CSVs, one under estados/YUCATAN, and one
// direct-award CSV that must be rejected
func writeScenario(t *testing.T) (dir string, paths []string) {
	t.Helper()
	dir = t.TempDir()

	a := filepath.Join(dir, "estados", "yucatan", "licitaciones_a.csv")
	writeLatin1CSV(t, a, csvRows(domain.FormatBidding, "IMSS", scenarioHeader, []string{"2021", "EXP-1"}))

	b := filepath.Join(dir, "federal", "licitaciones_b.csv")
	writeLatin1CSV(t, b, csvRows(domain.FormatBidding, "ISSSTE", scenarioHeader, []string{"2021", "EXP-2"}))

	c := filepath.Join(dir, "federal", "licitaciones_c.csv")
	writeLatin1CSV(t, c, csvRows(domain.FormatDirectAward, "SEP", scenarioHeader, []string{"2021", "EXP-3"}))

	return dir, []string{a, b, c}
}

func TestPipeline_Scenario(t *testing.T) {
	_, paths := writeScenario(t)

	run, err := NewPipeline(biddingSpec(t), Options{Logger: infrastructure.DiscardLogger()}).
		Run(context.Background(), paths)
	require.NoError(t, err)

	require.Len(t, run.Files, 3)
	assert.Equal(t, []string{"EJERCICIO", EntityColumn, StateColumn, "NÚMERO DE EXPEDIENTE"}, run.Files[0].Primary.Columns)
	assert.Equal(t, []string{"EJERCICIO", EntityColumn, "NÚMERO DE EXPEDIENTE"}, run.Files[1].Primary.Columns)
	assert.Equal(t, OutcomeRejected, run.Files[2].Outcome)
	assert.True(t, apperrors.IsType(run.Files[2].Err, apperrors.ErrTypeFormatMismatch))
	assert.Nil(t, run.Files[2].Primary)

	require.False(t, run.Empty())
	assert.Equal(t, []string{"EJERCICIO", EntityColumn, StateColumn, "NÚMERO DE EXPEDIENTE"}, run.Primary.Columns)
	assert.Equal(t, [][]string{
		{"2021", "IMSS", "YUCATAN", "EXP-1"},
		{"2021", "ISSSTE", "", "EXP-2"},
	}, run.Primary.Rows)

	assert.Equal(t, 2, run.Outcomes[OutcomeAccepted])
	assert.Equal(t, 1, run.Outcomes[OutcomeRejected])
	assert.Nil(t, run.Appendix)
}

func TestPipeline_WorkerCountDoesNotChangeOutput(t *testing.T) {
	dir, paths := writeScenario(t)
	for _, id := range []string{"EXP-4", "EXP-5", "EXP-1"} {
		p := filepath.Join(dir, "estados", "campeche", "licitaciones_"+id+".csv")
		writeLatin1CSV(t, p, csvRows(domain.FormatBidding, "IMSS", scenarioHeader,
			[]string{"2021", id}, []string{"2022", id}))
		paths = append(paths, p)
	}

	spec := biddingSpec(t)
	sequential, err := NewPipeline(spec, Options{Workers: 1, Logger: infrastructure.DiscardLogger()}).
		Run(context.Background(), paths)
	require.NoError(t, err)

	parallel, err := NewPipeline(spec, Options{Workers: 4, Logger: infrastructure.DiscardLogger()}).
		Run(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, sequential.Primary, parallel.Primary)
	assert.Equal(t, sequential.Outcomes, parallel.Outcomes)
}

func TestPipeline_DuplicatesAcrossDocuments(t *testing.T) {
	dir := t.TempDir()
	rows := csvRows(domain.FormatDirectAward, "IMSS", scenarioHeader,
		[]string{"2021", "EXP-1"}, []string{"2021", "EXP-2"})

	var paths []string
	for _, name := range []string{"adjudicaciones_1.csv", "adjudicaciones_2.csv"} {
		p := filepath.Join(dir, name)
		writeLatin1CSV(t, p, rows)
		paths = append(paths, p)
	}

	run, err := NewPipeline(directAwardSpec(t), Options{Logger: infrastructure.DiscardLogger()}).
		Run(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, 4, run.PrimaryInputRows)
	assert.Equal(t, 2, run.PrimaryDuplicates)
	assert.Equal(t, 2, run.Primary.Len())
}

func TestPipeline_SpreadsheetAppendix(t *testing.T) {
	dir := t.TempDir()
	header := []string{"Ejercicio", bidderHeader}

	withAppendix := filepath.Join(dir, "licitaciones_1.xlsx")
	writeWorkbook(t, withAppendix,
		spreadsheetRows(domain.FormatBidding, "IMSS", header, []string{"2021", "1"}),
		sheetFixture{name: "Hidden_1", rows: [][]string{{"Si"}, {"No"}}},
		sheetFixture{name: "Tabla_334271", rows: [][]string{{"ID", "Razón social"}, {"1", "ACME"}, {"1", "ACME"}}},
	)

	missingSheet := filepath.Join(dir, "licitaciones_2.xlsx")
	writeWorkbook(t, missingSheet,
		spreadsheetRows(domain.FormatBidding, "IMSS", header, []string{"2021", "2"}))

	noMarker := filepath.Join(dir, "licitaciones_3.xlsx")
	writeWorkbook(t, noMarker,
		spreadsheetRows(domain.FormatBidding, "IMSS", []string{"Ejercicio", "Monto"}, []string{"2021", "10"}))

	run, err := NewPipeline(biddingSpec(t), Options{Logger: infrastructure.DiscardLogger()}).
		Run(context.Background(), []string{withAppendix, missingSheet, noMarker})
	require.NoError(t, err)

	assert.Equal(t, 3, run.Outcomes[OutcomeAccepted])
	assert.Equal(t, 1, run.AppendixMisses)
	assert.True(t, apperrors.IsType(run.Files[1].AppendixErr, apperrors.ErrTypeAppendixNotFound))
	assert.NotNil(t, run.Files[1].Primary, "appendix failures keep the primary contribution")
	assert.Nil(t, run.Files[2].Appendix)
	assert.NotNil(t, run.Files[2].Primary)

	require.NotNil(t, run.Appendix)
	assert.Equal(t, []string{"ID", "Razón social"}, run.Appendix.Columns)
	assert.Equal(t, [][]string{{"1", "ACME"}}, run.Appendix.Rows)
	assert.Equal(t, 1, run.AppendixDuplicates)
	assert.Equal(t, 3, run.Primary.Len())
}

func TestPipeline_LegacyWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estados", "yucatan", "licitaciones_2021.xls")
	copyFixture(t, legacyWorkbookFixture, path)

	run, err := NewPipeline(biddingSpec(t), Options{Logger: infrastructure.DiscardLogger()}).
		Run(context.Background(), []string{path})
	require.NoError(t, err)

	require.Equal(t, OutcomeAccepted, run.Files[0].Outcome, "err: %v", run.Files[0].Err)
	assert.Equal(t, []string{"EJERCICIO", EntityColumn, StateColumn, "NÚMERO DE EXPEDIENTE",
		"PERSONAS FÍSICAS O MORALES CON PROPOSICIÓN U OFERTA (TABLA_334271)"}, run.Primary.Columns)
	assert.Equal(t, []string{"2021", "INSTITUTO MEXICANO DEL SEGURO SOCIAL", "YUCATAN", "EXP-2", "2"}, run.Primary.Rows[1])

	require.NotNil(t, run.Appendix)
	assert.Equal(t, []string{"ID", "Razón social"}, run.Appendix.Columns)
	assert.Equal(t, [][]string{{"1", "ACME"}, {"2", "Construcciones Peña"}}, run.Appendix.Rows)
	assert.Zero(t, run.AppendixMisses)
}

func TestPipeline_DirectAwardIgnoresAppendix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adjudicaciones.xlsx")
	writeWorkbook(t, path,
		spreadsheetRows(domain.FormatDirectAward, "IMSS", []string{"Ejercicio", bidderHeader}, []string{"2021", "1"}),
		sheetFixture{name: "Tabla_334271", rows: [][]string{{"ID"}, {"1"}}},
	)

	run, err := NewPipeline(directAwardSpec(t), Options{Logger: infrastructure.DiscardLogger()}).
		Run(context.Background(), []string{path})
	require.NoError(t, err)

	assert.Equal(t, 1, run.Primary.Len())
	assert.Nil(t, run.Appendix)
	assert.Zero(t, run.AppendixMisses)
}

func TestPipeline_FailuresDoNotStopRun(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "licitaciones_ok.csv")
	writeLatin1CSV(t, good, csvRows(domain.FormatBidding, "", scenarioHeader, []string{"2021", "EXP-1"}))

	narrow := filepath.Join(dir, "licitaciones_narrow.csv")
	writeLatin1CSV(t, narrow, csvRows(domain.FormatBidding, "", []string{"Ejercicio"}, []string{"2021"}))

	corrupt := filepath.Join(dir, "licitaciones_bad.xlsx")
	require.NoError(t, os.WriteFile(corrupt, []byte("garbage"), 0644))

	paths := []string{filepath.Join(dir, "licitaciones.pdf"), corrupt, narrow, good}

	reporter := &recordingReporter{}
	run, err := NewPipeline(biddingSpec(t), Options{Logger: infrastructure.DiscardLogger(), Reporter: reporter}).
		Run(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, OutcomeSkipped, run.Files[0].Outcome)
	assert.Equal(t, OutcomeFailed, run.Files[1].Outcome)
	assert.True(t, apperrors.IsType(run.Files[1].Err, apperrors.ErrTypeUnreadableDocument))
	assert.Equal(t, OutcomeFailed, run.Files[2].Outcome)
	assert.True(t, apperrors.IsType(run.Files[2].Err, apperrors.ErrTypeInsufficientColumns))
	assert.Equal(t, OutcomeAccepted, run.Files[3].Outcome)

	assert.Equal(t, []string{"EJERCICIO", "NÚMERO DE EXPEDIENTE"}, run.Primary.Columns)
	assert.Equal(t, 4, reporter.total)
	assert.Len(t, reporter.advanced, 4)
	assert.True(t, reporter.finished)
}

func TestPipeline_NothingAccepted(t *testing.T) {
	_, paths := writeScenario(t)

	logger, handler := testutil.NewTestLogger(t)
	run, err := NewPipeline(directAwardSpec(t), Options{Logger: logger}).
		Run(context.Background(), paths[:2])
	require.NoError(t, err)

	assert.True(t, run.Empty())
	assert.Nil(t, run.Appendix)
	assert.Equal(t, 2, run.Outcomes[OutcomeRejected])

	testutil.AssertLogContains(t, handler, slog.LevelWarn, "No document produced primary records")
	assert.True(t, handler.ContainsAttr("error_type", string(apperrors.ErrTypeEmptyResultSet)))
	assert.True(t, handler.ContainsAttr("error", apperrors.NewEmptyResultSetError().Error()))
}

func TestPipeline_Cancelled(t *testing.T) {
	_, paths := writeScenario(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := NewPipeline(biddingSpec(t), Options{Workers: 2, Logger: infrastructure.DiscardLogger()}).
		Run(ctx, paths)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, run)
}

func TestPipeline_TracesAndMetrics(t *testing.T) {
	_, paths := writeScenario(t)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	providers, err := infrastructure.InitializeOTel(config.TelemetryConfig{}, nil, infrastructure.DiscardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := infrastructure.NewETLMetrics(providers.Meter)
	require.NoError(t, err)

	_, err = NewPipeline(biddingSpec(t), Options{
		Logger:  infrastructure.DiscardLogger(),
		Tracer:  tp.Tracer("test"),
		Metrics: metrics,
	}).Run(context.Background(), paths)
	require.NoError(t, err)

	var documents, runs int
	for _, span := range recorder.Ended() {
		switch span.Name() {
		case "etl.document":
			documents++
		case "etl.run":
			runs++
		}
	}
	assert.Equal(t, 3, documents)
	assert.Equal(t, 1, runs)

	path := filepath.Join(t.TempDir(), "sipot.prom")
	require.NoError(t, providers.WriteMetrics(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `outcome="accepted"`)
	assert.Contains(t, string(content), `outcome="rejected"`)
	assert.Contains(t, string(content), `table="primary"`)
}

type recordingReporter struct {
	total    int
	advanced []FileResult
	finished bool
}

func (r *recordingReporter) Start(total int)           { r.total = total }
func (r *recordingReporter) Advance(result FileResult) { r.advanced = append(r.advanced, result) }
func (r *recordingReporter) Finish()                   { r.finished = true }

func TestPipeline_LogLevelsByOutcome(t *testing.T) {
	dir := t.TempDir()

	rejected := filepath.Join(dir, "licitaciones_adj.csv")
	writeLatin1CSV(t, rejected, csvRows(domain.FormatDirectAward, "", scenarioHeader, []string{"2021", "1"}))

	narrow := filepath.Join(dir, "licitaciones_narrow.csv")
	writeLatin1CSV(t, narrow, csvRows(domain.FormatBidding, "", []string{"Ejercicio"}, []string{"2021"}))

	noSheet := filepath.Join(dir, "licitaciones_ok.csv")
	writeLatin1CSV(t, noSheet, csvRows(domain.FormatBidding, "", []string{"Ejercicio", bidderHeader}, []string{"2021", "1"}))

	logger, handler := testutil.NewTestLogger(t)
	run, err := NewPipeline(biddingSpec(t), Options{Logger: logger}).
		Run(context.Background(), []string{filepath.Join(dir, "licitaciones.txt"), rejected, narrow, noSheet})
	require.NoError(t, err)

	testutil.AssertLogContains(t, handler, slog.LevelDebug, "Skipping unsupported file")
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "Document format does not match contract type")
	testutil.AssertLogContains(t, handler, slog.LevelError, "Document processing failed")
	testutil.AssertLogContains(t, handler, slog.LevelDebug, "Appendix table not extracted")
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "ETL run summary")
	assert.True(t, handler.ContainsAttr("error_type", string(apperrors.ErrTypeInsufficientColumns)))
	assert.True(t, handler.ContainsAttr("path", narrow))

	assert.Equal(t, 1, run.AppendixMisses)
	assert.Equal(t, 1, run.Primary.Len())
}
