package layered

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler drops every record. Enabled reports false, so callers never
// build the attributes of a disabled event.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr is read by Invalidate on arbitrary goroutines and by the pass
// on the rendering goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger routes the compositor's log events, and those of
// integration/gpupresent, to l. Nothing is logged until SetLogger is
// called; SetLogger(nil) silences the package again. It may be called at
// any time, from any goroutine.
//
// Events, all with a "layered:" or "gpupresent:" message prefix:
//
//   - Debug "pass complete" once per pass with the source layer id and the
//     layer count; "invalidate of unknown layer ignored" with the id;
//     "nested paint ignored"; "accelerator flush failed" with the layer id;
//     gpupresent's "accelerator device sharing unavailable".
//   - Info "layers configured" with the number of user layers.
//   - Warn "layer surface allocation failed" with the layer id and size,
//     "background surface allocation failed",
//     "layer paint failed" and "background paint failed" with the
//     *PaintError, "copy from lower layer failed" with both ids.
//
// Warn events describe failures the pass has already recovered from: the
// affected layer shows the content below it and is retried next pass.
//
//	layered.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the logger set by SetLogger, or a disabled one.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
