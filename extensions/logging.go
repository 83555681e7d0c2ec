package extensions

import (
	"go.uber.org/zap"

	lazy "github.com/pumped-fn/lazy-go"
)

// LoggingObserver logs mode transitions and interceptions
type LoggingObserver struct {
	lazy.BaseObserver
	logger *zap.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *zap.Logger) *LoggingObserver {
	return &LoggingObserver{
		BaseObserver: lazy.NewBaseObserver("logging"),
		logger:       logger,
	}
}

func (o *LoggingObserver) OnEnter(device lazy.Device) {
	o.logger.Info("entering deferred mode", zap.Stringer("device", device))
}

func (o *LoggingObserver) OnExit(device lazy.Device) {
	o.logger.Info("leaving deferred mode", zap.Stringer("device", device))
}

func (o *LoggingObserver) OnSync(device lazy.BackendDevice, err error) {
	if err != nil {
		o.logger.Error("exit-time sync failed",
			zap.Stringer("device", device),
			zap.Error(err))
		return
	}
	o.logger.Info("deferred work submitted", zap.Stringer("device", device))
}

func (o *LoggingObserver) OnIntercept(op *lazy.Op, inMode bool) {
	if inMode {
		o.logger.Warn("interceptor passed through inside deferred mode",
			zap.String("op", op.Name))
		return
	}
	o.logger.Info("repairing stale deferred operands",
		zap.String("op", op.Name),
		zap.Int("operands", len(op.Stack)))
}
