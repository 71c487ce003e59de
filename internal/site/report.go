package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/mdsite/internal/metrics"
)

// Stage names used in reports, logs, and metrics.
const (
	StageCopyStatic = "copy_static"
	StageDiscover   = "discover"
	StageRender     = "render"
	StageSitemap    = "sitemap"
)

// Report describes a finished (or failed) build.
type Report struct {
	BuildID        string
	Start          time.Time
	End            time.Time
	StaticFiles    int
	Rendered       int
	Copied         int
	Skipped        int
	Pages          []string // output-relative paths of every page in the site, rendered or skipped
	StageDurations map[string]time.Duration
	Incremental    bool
	Outcome        metrics.BuildOutcomeLabel
	Error          string
}

func newReport(buildID string, incremental bool) *Report {
	return &Report{
		BuildID:        buildID,
		Start:          time.Now(),
		StageDurations: make(map[string]time.Duration),
		Incremental:    incremental,
	}
}

// Duration is End-Start, or the time elapsed so far for an unfinished build.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// Summary returns a one-line human readable description.
func (r *Report) Summary() string {
	return fmt.Sprintf("build=%s outcome=%s rendered=%d skipped=%d copied=%d static=%d duration=%s",
		r.BuildID, r.Outcome, r.Rendered, r.Skipped, r.Copied, r.StaticFiles, r.Duration().Round(time.Millisecond))
}

type reportJSON struct {
	BuildID        string           `json:"build_id"`
	Start          time.Time        `json:"start"`
	End            time.Time        `json:"end"`
	Outcome        string           `json:"outcome"`
	Incremental    bool             `json:"incremental"`
	StaticFiles    int              `json:"static_files"`
	Rendered       int              `json:"rendered"`
	Copied         int              `json:"copied"`
	Skipped        int              `json:"skipped"`
	Pages          []string         `json:"pages"`
	StageDurations map[string]int64 `json:"stage_durations_ms"`
	Error          string           `json:"error,omitempty"`
}

// Persist atomically writes build-report.json into dir.
func (r *Report) Persist(dir string) error {
	stages := make(map[string]int64, len(r.StageDurations))
	for k, v := range r.StageDurations {
		stages[k] = v.Milliseconds()
	}
	data, err := json.MarshalIndent(reportJSON{
		BuildID:        r.BuildID,
		Start:          r.Start,
		End:            r.End,
		Outcome:        string(r.Outcome),
		Incremental:    r.Incremental,
		StaticFiles:    r.StaticFiles,
		Rendered:       r.Rendered,
		Copied:         r.Copied,
		Skipped:        r.Skipped,
		Pages:          r.Pages,
		StageDurations: stages,
		Error:          r.Error,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fsError(err, "failed to create report directory", dir)
	}
	path := filepath.Join(dir, "build-report.json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fsError(err, "failed to write report", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fsError(err, "failed to rename report", path)
	}
	return nil
}
