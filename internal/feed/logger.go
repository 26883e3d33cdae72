package feed

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// slogLogger routes cron's scheduler logs through slog.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}

var _ cron.Logger = slogLogger{}
