package session

import "go.uber.org/zap"

// Notifier receives the user-facing signals the session emits:
// success/failure toasts and the 0-100 connection progress value. The
// API layer forwards these to whatever front end is attached; the
// default sink just logs them.
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Progress(pct int)
}

// LogNotifier is the default Notifier, writing signals to the log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify")}
}

func (n *LogNotifier) Success(msg string) {
	n.logger.Info("Toast", zap.String("kind", "success"), zap.String("message", msg))
}

func (n *LogNotifier) Error(msg string) {
	n.logger.Info("Toast", zap.String("kind", "error"), zap.String("message", msg))
}

func (n *LogNotifier) Progress(pct int) {
	n.logger.Debug("Connection progress", zap.Int("pct", pct))
}
