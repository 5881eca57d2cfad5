package scheduler

import (
	"github.com/charmbracelet/log"

	"github.com/julianstephens/khoshoo3/internal/logger"
)

// gocronLogger routes gocron's internal logging to the application logger
type gocronLogger struct {
	log *log.Logger
}

func newLogger() *gocronLogger {
	base := logger.Logger
	if base == nil {
		base = log.Default()
	}
	return &gocronLogger{
		log: base.WithPrefix("scheduler"),
	}
}

func (l *gocronLogger) Debug(msg string, args ...any) {
	l.log.Debug(msg, args...)
}

func (l *gocronLogger) Error(msg string, args ...any) {
	l.log.Error(msg, args...)
}

func (l *gocronLogger) Info(msg string, args ...any) {
	l.log.Info(msg, args...)
}

func (l *gocronLogger) Warn(msg string, args ...any) {
	l.log.Warn(msg, args...)
}
