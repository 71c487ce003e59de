// Package version holds build metadata, set at link time:
//
//	go build -ldflags "-X git.home.luguber.info/inful/mdsite/internal/version.Version=v0.3.0"
package version

import "fmt"

// Version is the release version of mdsite.
var Version = "unknown"

// Build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns the one-line version banner printed by --version.
func String() string {
	return fmt.Sprintf("mdsite %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
