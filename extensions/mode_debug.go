package extensions

import (
	"context"
	"log/slog"

	lazy "github.com/pumped-fn/lazy-go"
)

// ModeDebugObserver logs a trail of mode transitions when an exit-time sync
// fails.
//
// Usage:
//
//	// Structured JSON logging
//	handler := slog.NewJSONHandler(os.Stdout, nil)
//	ext := extensions.NewModeDebugObserver(handler)
//
//	// Silent (for testing)
//	ext := extensions.NewModeDebugObserver(extensions.NewSilentHandler())
//
// The observer logs at ERROR level with the transitions that led up to the
// failing sync.
type ModeDebugObserver struct {
	lazy.BaseObserver

	trail  []string
	logger *slog.Logger
}

// NewModeDebugObserver creates a new mode debug observer.
// logHandler: slog.Handler for logging (use NewSilentHandler to discard)
func NewModeDebugObserver(logHandler slog.Handler) *ModeDebugObserver {
	return &ModeDebugObserver{
		BaseObserver: lazy.NewBaseObserver("mode-debug"),
		logger:       slog.New(logHandler),
	}
}

func (o *ModeDebugObserver) OnEnter(device lazy.Device) {
	o.record("enter " + device.String())
}

func (o *ModeDebugObserver) OnExit(device lazy.Device) {
	o.record("exit " + device.String())
}

func (o *ModeDebugObserver) OnIntercept(op *lazy.Op, inMode bool) {
	if inMode {
		o.record("intercept-passthrough " + op.Name)
		return
	}
	o.record("intercept " + op.Name)
}

// OnSync logs the transition trail when the sync trigger fails
func (o *ModeDebugObserver) OnSync(device lazy.BackendDevice, err error) {
	o.record("sync " + device.String())
	if err == nil {
		return
	}

	o.logger.Error("Exit-Time Sync Error",
		"device", device.String(),
		"error", err.Error(),
		"trail", o.trail,
	)
}

func (o *ModeDebugObserver) record(event string) {
	const maxTrail = 32
	o.trail = append(o.trail, event)
	if len(o.trail) > maxTrail {
		o.trail = o.trail[len(o.trail)-maxTrail:]
	}
}

// silentHandler discards all log records.
type silentHandler struct{}

// NewSilentHandler returns a slog.Handler that discards everything.
func NewSilentHandler() slog.Handler {
	return silentHandler{}
}

func (silentHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (silentHandler) Handle(context.Context, slog.Record) error { return nil }
func (h silentHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h silentHandler) WithGroup(string) slog.Handler           { return h }
