package textflow

import (
	"log/slog"

	"github.com/gogpu/textflow/text"
)

// SetLogger configures the logger for textflow and its sub-packages.
// By default, textflow produces no log output. Pass nil to restore
// silence. Safe for concurrent use.
//
// Log levels used by textflow:
//   - [slog.LevelDebug]: layout cache decisions, font fallback choices
//   - [slog.LevelInfo]: asynchronous font loads completing
//   - [slog.LevelWarn]: degraded content (unresolved styles, missing
//     fonts, shaping failures, malformed bidi input)
//
// Example:
//
//	// Enable debug-level logging for full diagnostics:
//	textflow.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	text.SetLogger(l)
}

// Logger returns the current logger used by textflow.
func Logger() *slog.Logger {
	return text.Logger()
}
