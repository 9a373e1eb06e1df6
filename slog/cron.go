package slog

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

var _ cron.Logger = (*CronLogger)(nil)

// CronLogger adapts a slog.Logger to cron.Logger. Scheduler chatter is
// logged at debug level.
type CronLogger struct {
	logger *slog.Logger
}

// NewCronLogger creates a new CronLogger.
func NewCronLogger(logger *slog.Logger) *CronLogger {
	return &CronLogger{logger: logger}
}

func (l *CronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron "+msg, keysAndValues...)
}

func (l *CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron "+msg, append(keysAndValues, "err", err)...)
}
