package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// PageResult is what happened to a single content file.
type PageResult string

const (
	PageRendered PageResult = "rendered"
	PageCopied   PageResult = "copied"
	PageSkipped  PageResult = "skipped"
	PageFailed   PageResult = "failed"
)

// BuildOutcomeLabel is the final status of a build.
type BuildOutcomeLabel string

const (
	BuildSuccess  BuildOutcomeLabel = "success"
	BuildWarning  BuildOutcomeLabel = "warning"
	BuildFailed   BuildOutcomeLabel = "failed"
	BuildCanceled BuildOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for site builds. Implementations must be
// safe for concurrent use; page hooks are called from generator workers.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObservePageDuration(d time.Duration)
	IncPageResult(result PageResult)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	ObserveCloneDuration(d time.Duration, success bool)
	AddBrokenLinks(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) ObservePageDuration(time.Duration)          {}
func (NoopRecorder) IncPageResult(PageResult)                   {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)          {}
func (NoopRecorder) ObserveCloneDuration(time.Duration, bool)   {}
func (NoopRecorder) AddBrokenLinks(int)                         {}
