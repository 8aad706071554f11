package dataprocessing

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Reporter receives run progress. Implementations must be safe for use by
// one goroutine at a time; the pipeline never calls them concurrently.
type Reporter interface {
	Start(total int)
	Advance(result FileResult)
	Finish()
}

// NopReporter discards progress
type NopReporter struct{}

func (NopReporter) Start(int)          {}
func (NopReporter) Advance(FileResult) {}
func (NopReporter) Finish()            {}

// ProgressTracker tracks progress for long-running operations
type ProgressTracker struct {
	Total     int
	Current   int
	StartTime time.Time
	Message   string
	mu        sync.Mutex
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{
		Total:     total,
		StartTime: time.Now(),
	}
}

// Increment increments the current progress by 1
func (p *ProgressTracker) Increment(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Current++
	p.Message = message
}

// GetProgress returns the current progress state
func (p *ProgressTracker) GetProgress() (current, total int, percentage float64, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Total > 0 {
		percentage = float64(p.Current) / float64(p.Total) * 100
	}
	return p.Current, p.Total, percentage, p.Message
}

// GetETA calculates the estimated time remaining
func (p *ProgressTracker) GetETA() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Current == 0 || p.Total == 0 {
		return "calculating..."
	}

	elapsed := time.Since(p.StartTime)
	rate := float64(p.Current) / elapsed.Seconds()
	if rate == 0 {
		return "calculating..."
	}

	return formatDuration(float64(p.Total-p.Current) / rate)
}

// IsComplete returns true once every item has been counted
func (p *ProgressTracker) IsComplete() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.Current >= p.Total
}

// GetElapsedTimeString returns a formatted elapsed time string
func (p *ProgressTracker) GetElapsedTimeString() string {
	return formatDuration(time.Since(p.StartTime).Seconds())
}

func formatDuration(seconds float64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%.0f seconds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%.1f minutes", seconds/60)
	default:
		return fmt.Sprintf("%.1f hours", seconds/3600)
	}
}

// LogReporter logs progress every time another tenth of the documents is done
type LogReporter struct {
	logger   *slog.Logger
	tracker  *ProgressTracker
	lastStep int
}

// NewLogReporter creates a reporter that writes progress to logger
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

// Start begins tracking a run of total documents
func (r *LogReporter) Start(total int) {
	r.tracker = NewProgressTracker(total)
	r.lastStep = 0
	r.logger.Info("Processing files", slog.Int("total", total))
}

// Advance counts one finished document
func (r *LogReporter) Advance(result FileResult) {
	if r.tracker == nil {
		return
	}
	r.tracker.Increment(result.Path)

	current, total, pct, _ := r.tracker.GetProgress()
	step := int(pct) / 10
	if step <= r.lastStep && !r.tracker.IsComplete() {
		return
	}
	r.lastStep = step
	r.logger.Info("Progress",
		slog.Int("current", current),
		slog.Int("total", total),
		slog.String("percentage", fmt.Sprintf("%.0f%%", pct)),
		slog.String("eta", r.tracker.GetETA()))
}

// Finish logs the elapsed time of the run
func (r *LogReporter) Finish() {
	if r.tracker == nil {
		return
	}
	current, total, _, _ := r.tracker.GetProgress()
	r.logger.Info("Processing finished",
		slog.Int("processed", current),
		slog.Int("total", total),
		slog.String("elapsed", r.tracker.GetElapsedTimeString()))
}
