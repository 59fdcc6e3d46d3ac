package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBook       = "book"
	KeyFormat     = "format"
	KeyStage      = "stage"
	KeySection    = "section"
	KeyPath       = "path"
	KeyTool       = "tool"
	KeyRunID      = "run_id"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Book(title string) slog.Attr     { return slog.String(KeyBook, title) }
func Format(name string) slog.Attr    { return slog.String(KeyFormat, name) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Section(name string) slog.Attr   { return slog.String(KeySection, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Tool(name string) slog.Attr      { return slog.String(KeyTool, name) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
