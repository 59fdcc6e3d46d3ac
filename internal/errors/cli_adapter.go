package errors

import (
	"fmt"
	"log/slog"
)

// CLIErrorAdapter handles error presentation for the command-line entry point.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the process exit code for an error.
// The build CLI contract is binary: 0 on full success, 1 on any failure.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if be, ok := err.(*BuildError); ok {
		return a.formatBuildError(be)
	}

	return fmt.Sprintf("Error: %v", err)
}

// formatBuildError formats a BuildError for display.
func (a *CLIErrorAdapter) formatBuildError(err *BuildError) string {
	if a.verbose {
		return err.Error()
	}

	msg := err.Message
	if len(err.Context) > 0 {
		for _, key := range []string{"path", "identifier", "fields", "tool", "formats"} {
			if v, ok := err.Context[key]; ok {
				msg = fmt.Sprintf("%s (%s: %v)", msg, key, v)
				break
			}
		}
	}

	switch err.Category {
	case CategoryConfig:
		return fmt.Sprintf("Configuration error: %s", msg)
	case CategoryResolve:
		return fmt.Sprintf("Resolution error: %s", msg)
	case CategoryTool:
		return fmt.Sprintf("Missing tool: %s", msg)
	default:
		return fmt.Sprintf("Error: %s", msg)
	}
}

// LogError logs the error through the adapter's logger with its category attached.
func (a *CLIErrorAdapter) LogError(err error) {
	if err == nil {
		return
	}
	a.logger.Error(a.FormatError(err), "category", string(GetCategory(err)))
}
