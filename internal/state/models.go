package state

import (
	"time"

	"git.home.luguber.info/inful/mdsite/internal/metrics"
)

// PageRecord is the stored result of rendering one page.
type PageRecord struct {
	Path        string // content-relative source path, slash separated
	Output      string // output-relative path
	Fingerprint string
	BuildID     string
	UpdatedAt   time.Time
}

// BuildRecord summarizes one build.
type BuildRecord struct {
	ID             string
	StartedAt      time.Time
	Duration       time.Duration
	Rendered       int
	Copied         int
	Skipped        int
	Outcome        metrics.BuildOutcomeLabel
	ConfigSnapshot string
	Commit         string // content repository commit, when fetched from git
	Error          string
}
