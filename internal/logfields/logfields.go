package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyOutput     = "output"
	KeyBlock      = "block"
	KeyBlockType  = "block_type"
	KeyDelimiter  = "delimiter"
	KeyPages      = "pages"
	KeySkipped    = "skipped"
	KeyURL        = "url"
	KeyBranch     = "branch"
	KeyPort       = "port"
	KeyOp         = "op"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Output(o string) slog.Attr       { return slog.String(KeyOutput, o) }
func Block(i int) slog.Attr           { return slog.Int(KeyBlock, i) }
func BlockType(t string) slog.Attr    { return slog.String(KeyBlockType, t) }
func Delimiter(d string) slog.Attr    { return slog.String(KeyDelimiter, d) }
func Pages(n int) slog.Attr           { return slog.Int(KeyPages, n) }
func Skipped(n int) slog.Attr         { return slog.Int(KeySkipped, n) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func Port(p int) slog.Attr            { return slog.Int(KeyPort, p) }
func Op(op string) slog.Attr          { return slog.String(KeyOp, op) }
func Since(start time.Time) slog.Attr {
	return DurationMS(float64(time.Since(start).Microseconds()) / 1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
