package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		levelStr = "info"
	}
	if lvl, err := logrus.ParseLevel(strings.ToLower(levelStr)); err == nil {
		l.SetLevel(lvl)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}

// Info logs an informational message for the given component tag.
func Info(tag, msg string) {
	log.WithField("component", tag).Info(msg)
}

// Success logs a completed operation. Same level as Info, marked in the message.
func Success(tag, msg string) {
	log.WithField("component", tag).Info("✓ " + msg)
}

// Warn logs a recoverable problem.
func Warn(tag, msg string) {
	log.WithField("component", tag).Warn(msg)
}

// Error logs a failure.
func Error(tag, msg string) {
	log.WithField("component", tag).Error(msg)
}

// Debug logs verbose diagnostics (hidden unless LOG_LEVEL=debug).
func Debug(tag, msg string) {
	log.WithField("component", tag).Debug(msg)
}

// Banner prints the startup banner.
func Banner(version string) {
	fmt.Printf("tradeup-scout %s\n", version)
}
