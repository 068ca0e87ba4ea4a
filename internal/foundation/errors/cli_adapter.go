package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
)

// exitCodes maps categories to process exit codes. Unclassified errors exit 1.
var exitCodes = map[ErrorCategory]int{
	CategoryValidation: 2,
	CategoryNotFound:   3,
	CategoryAmbiguous:  4,
	CategoryConfig:     7,
	CategoryPrecheck:   9,
	CategoryInternal:   10,
	CategoryBuild:      11,
	CategoryStep:       11,
	CategoryFileSystem: 11,
	CategoryRuntime:    12,
	CategoryJournal:    12,
	CategoryPublish:    13,
}

// CLIErrorAdapter turns the error returned by a command into a message and exit code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
	exit    func(int)
}

func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, stderr: os.Stderr, exit: os.Exit}
}

// ExitCodeFor returns 0 for nil, the category code for classified errors and 1 otherwise.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	ce, ok := AsClassified(err)
	if !ok {
		return 1
	}
	if code, ok := exitCodes[ce.category]; ok {
		return code
	}
	return 1
}

// FormatError renders err for the terminal. Verbose mode shows the full chain.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	ce, ok := AsClassified(err)
	switch {
	case !ok:
		return fmt.Sprintf("Error: %v", err)
	case a.verbose:
		return ce.Error()
	case ce.category == CategoryInternal:
		return "Internal error occurred (use -v for details)"
	}
	if stem, ok := ce.context.GetString("stem"); ok {
		return fmt.Sprintf("Error: %s: %s", stem, ce.message)
	}
	return "Error: " + ce.message
}

// HandleError prints err and exits with its code. Fatal errors and all errors in
// verbose mode are also logged with their context fields.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	ce, ok := AsClassified(err)
	switch {
	case !ok:
		a.logger.Error("Unclassified error", "error", err)
	case a.verbose || ce.severity == SeverityFatal:
		a.logClassified(ce)
	}
	fmt.Fprintln(a.stderr, a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}

func (a *CLIErrorAdapter) logClassified(ce *ClassifiedError) {
	attrs := []slog.Attr{slog.String("category", string(ce.category))}
	for _, k := range slices.Sorted(maps.Keys(ce.context)) {
		attrs = append(attrs, slog.Any(k, ce.context[k]))
	}
	if ce.CanRetry() {
		attrs = append(attrs, slog.Bool("retryable", true))
	}
	if ce.cause != nil {
		attrs = append(attrs, slog.String("cause", ce.cause.Error()))
	}
	level := slog.LevelError
	if ce.severity == SeverityWarning {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(context.Background(), level, ce.message, attrs...)
}
