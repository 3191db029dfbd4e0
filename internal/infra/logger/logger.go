// internal/infra/logger/logger.go
package logger

import (
	"io"
	"os"
	"strings"
	"thread_broadcast_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// Log is the global logger instance
var Log = logrus.New()

// base is attached to every component entry handed out by For.
var base = logrus.Fields{}

// Init initializes the global logger based on application configuration.
func Init(cfg *config.AppConfig) {
	Log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		Log.Warnf("Invalid log level '%s', defaulting to 'info'. Error: %v", cfg.LogLevel, err)
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
	Log.SetReportCaller(level >= logrus.DebugLevel)

	format := "text"
	if isStructuredEnv(cfg.Environment) {
		format = "json"
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00", // ISO8601
			FieldMap:        logrus.FieldMap{logrus.FieldKeyMsg: "message"},
		})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	base = logrus.Fields{"platform": cfg.Platform}

	Log.WithFields(logrus.Fields{
		"log_level":   level.String(),
		"format":      format,
		"environment": cfg.Environment,
		"platform":    cfg.Platform,
	}).Info("Logger initialized")
}

// For returns an entry tagged with the component name and the configured platform.
func For(component string) *logrus.Entry {
	return Log.WithFields(base).WithField("component", component)
}

// Nop returns an entry that discards everything. Handy in tests.
func Nop() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func isStructuredEnv(env string) bool {
	env = strings.ToLower(env)
	return env == "production" || env == "staging"
}
