package errors

import (
	"log/slog"
)

// LogHandler is an ErrorHandler that writes through slog.
type LogHandler struct {
	// Logger receives the records. Nil means slog.Default().
	Logger *slog.Logger
	// Verbose enables stack traces on errors and panics.
	Verbose bool
}

func (h *LogHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// HandleError logs a ViewError at error level.
func (h *LogHandler) HandleError(err *ViewError) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "kind", err.Kind.String(), "err", err.Err}
	if err.View != "" {
		attrs = append(attrs, "view", err.View)
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.logger().Error("viewkit error", attrs...)
}

// HandlePanic logs a PanicError at error level.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "value", err.Value}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.logger().Error("viewkit panic", attrs...)
}

// HandleFinding logs a LeakFinding at warn level.
func (h *LogHandler) HandleFinding(f *LeakFinding) {
	if f == nil {
		return
	}
	h.logger().Warn("untracked view",
		"parent", f.Parent,
		"parent_type", f.ParentType,
		"field", f.Field,
		"child", f.Child,
	)
}
