package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter renders a Result for humans or machines.
type Formatter interface {
	Format(w io.Writer, result *Result) error
}

// NewFormatter returns the formatter for name ("text" or "json").
func NewFormatter(name string, useColor bool) Formatter {
	if name == "json" {
		return &JSONFormatter{}
	}
	return &TextFormatter{useColor: useColor}
}

// TextFormatter formats lint results as human-readable text.
type TextFormatter struct {
	useColor bool
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGreen  = "\033[32m"
)

func (f *TextFormatter) colorize(color, text string) string {
	if !f.useColor {
		return text
	}
	return color + text + colorReset
}

func (f *TextFormatter) severityColor(s Severity) string {
	switch s {
	case SeverityError:
		return colorRed
	case SeverityWarning:
		return colorYellow
	default:
		return colorBlue
	}
}

// Format writes one section per issue followed by a summary line.
func (f *TextFormatter) Format(w io.Writer, result *Result) error {
	var b strings.Builder
	for _, issue := range result.Issues {
		loc := issue.FilePath
		if issue.Block > 0 {
			loc = fmt.Sprintf("%s (block %d)", loc, issue.Block)
		}
		fmt.Fprintf(&b, "%s %s: %s [%s]\n",
			f.colorize(f.severityColor(issue.Severity), issue.Severity.String()),
			loc, issue.Message, issue.Rule)
		if issue.Explanation != "" {
			for _, line := range strings.Split(issue.Explanation, "\n") {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		}
		if issue.Fix != "" {
			fmt.Fprintf(&b, "  fix: %s\n", issue.Fix)
		}
		b.WriteString("\n")
	}

	errs, warns := result.ErrorCount(), result.WarningCount()
	if errs == 0 && warns == 0 {
		fmt.Fprintf(&b, "%s %d files checked, no issues\n", f.colorize(colorGreen, "OK"), result.FilesTotal)
	} else {
		fmt.Fprintf(&b, "%d files checked: %d errors, %d warnings\n", result.FilesTotal, errs, warns)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// JSONFormatter formats lint results as JSON.
type JSONFormatter struct{}

// JSONOutput is the machine-readable lint report.
type JSONOutput struct {
	Files    int         `json:"files"`
	Errors   int         `json:"errors"`
	Warnings int         `json:"warnings"`
	Issues   []JSONIssue `json:"issues"`
}

// JSONIssue is a single issue in JSONOutput.
type JSONIssue struct {
	File        string `json:"file"`
	Severity    string `json:"severity"`
	Rule        string `json:"rule"`
	Message     string `json:"message"`
	Explanation string `json:"explanation,omitempty"`
	Fix         string `json:"fix,omitempty"`
	Block       int    `json:"block,omitempty"`
}

// Format writes result as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, result *Result) error {
	out := JSONOutput{
		Files:    result.FilesTotal,
		Errors:   result.ErrorCount(),
		Warnings: result.WarningCount(),
		Issues:   make([]JSONIssue, 0, len(result.Issues)),
	}
	for _, issue := range result.Issues {
		out.Issues = append(out.Issues, JSONIssue{
			File:        issue.FilePath,
			Severity:    strings.ToLower(issue.Severity.String()),
			Rule:        issue.Rule,
			Message:     issue.Message,
			Explanation: issue.Explanation,
			Fix:         issue.Fix,
			Block:       issue.Block,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
