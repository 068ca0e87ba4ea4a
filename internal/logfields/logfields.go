package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStem       = "stem"
	KeyDoctype    = "doctype"
	KeyStep       = "step"
	KeyStatus     = "status"
	KeyTool       = "tool"
	KeyPath       = "path"
	KeyMode       = "mode"
	KeyCount      = "count"
	KeyExitCode   = "exit_code"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Stem(s string) slog.Attr          { return slog.String(KeyStem, s) }
func Doctype(d string) slog.Attr       { return slog.String(KeyDoctype, d) }
func Step(name string) slog.Attr       { return slog.String(KeyStep, name) }
func Status(s string) slog.Attr        { return slog.String(KeyStatus, s) }
func Tool(name string) slog.Attr       { return slog.String(KeyTool, name) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Mode(m string) slog.Attr          { return slog.String(KeyMode, m) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func ExitCode(code int) slog.Attr      { return slog.Int(KeyExitCode, code) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
