package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a JSON logger at the level named by LOG_LEVEL
// (defaults to info).
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

// NewLoggerWithService returns an entry carrying a service field on every line.
func NewLoggerWithService(serviceName string) *logrus.Entry {
	return NewLogger().WithField("service", serviceName)
}
