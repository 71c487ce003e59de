// Package lint checks a content tree for problems that would fail or degrade a build.
package lint

import (
	"path/filepath"
	"strings"
)

// Severity indicates the importance level of a linting issue.
type Severity int

const (
	// SeverityInfo indicates informational messages.
	SeverityInfo Severity = iota
	// SeverityWarning indicates issues that degrade the site but don't block builds.
	SeverityWarning
	// SeverityError indicates issues that will make the build fail.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Issue represents a single linting problem found in a file.
type Issue struct {
	FilePath    string   // content-relative, slash separated
	Severity    Severity // Issue severity level
	Rule        string   // Rule identifier (e.g., "page-title")
	Message     string   // Brief description of the issue
	Explanation string   // Detailed explanation with context
	Fix         string   // Suggested fix
	Block       int      // 1-based block number, 0 for file-level issues
}

// Result contains all issues found during linting.
type Result struct {
	Issues     []Issue
	FilesTotal int

	// Suppressed counts warnings left out of Issues in quiet mode. They still
	// count toward HasWarnings and WarningCount.
	Suppressed int
}

// HasErrors returns true if any error-level issues exist.
func (r *Result) HasErrors() bool {
	return r.count(SeverityError) > 0
}

// HasWarnings returns true if any warning-level issues exist.
func (r *Result) HasWarnings() bool {
	return r.WarningCount() > 0
}

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int { return r.count(SeverityError) }

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int { return r.count(SeverityWarning) + r.Suppressed }

func (r *Result) count(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// File is a content file handed to rules.
type File struct {
	Path    string // absolute path
	Rel     string // content-relative, slash separated
	Content []byte // nil for non-page files
}

// Rule defines a linting rule that can be applied to files.
type Rule interface {
	// Name returns the unique identifier for this rule.
	Name() string

	// AppliesTo returns true if this rule should be checked for the given file.
	AppliesTo(f File) bool

	// Check validates a file and returns any issues found.
	Check(f File) ([]Issue, error)
}

// Config contains configuration for the linter.
type Config struct {
	// ContentDir is the root that page links are resolved against.
	ContentDir string

	// StaticDir holds assets that root-relative links may point at.
	StaticDir string

	// Quiet suppresses warnings, only showing errors.
	Quiet bool
}

// IsPage returns true if the file is rendered as a page.
func IsPage(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}
