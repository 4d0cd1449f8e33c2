// Package logger wraps logrus with component-tagged helpers used across
// the codebase. Every log line carries a "component" field so gateway
// output stays grep-able when several services log interleaved.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Level names mirror logrus levels; callers use these instead of
// importing logrus directly.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var (
	mu      sync.Mutex
	log     = newLogger()
	logFile *os.File
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// SetLevel changes the minimum level that gets emitted.
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	switch level {
	case DEBUG:
		log.SetLevel(logrus.DebugLevel)
	case INFO:
		log.SetLevel(logrus.InfoLevel)
	case WARN:
		log.SetLevel(logrus.WarnLevel)
	default:
		log.SetLevel(logrus.ErrorLevel)
	}
}

// fileHook mirrors every entry into the log file, one JSON line each,
// independent of the text formatter on stdout.
type fileHook struct {
	w         io.Writer
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *fileHook) Fire(e *logrus.Entry) error {
	line, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.w.Write(line)
	return err
}

// SetLogFile mirrors all output into path in addition to stdout.
// The file side uses JSON lines so it stays machine-readable.
func SetLogFile(path string) error {
	mu.Lock()
	defer mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	log.ReplaceHooks(make(logrus.LevelHooks))
	log.AddHook(&fileHook{
		w: f,
		formatter: &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		},
	})
	return nil
}

// Close releases the log file if one was configured.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		log.ReplaceHooks(make(logrus.LevelHooks))
		_ = logFile.Close()
		logFile = nil
	}
}

func entry(component string) *logrus.Entry {
	return log.WithField("component", component)
}

func entryF(component string, fields map[string]interface{}) *logrus.Entry {
	return log.WithField("component", component).WithFields(logrus.Fields(fields))
}

// DebugC logs a debug message tagged with a component.
func DebugC(component, msg string) { entry(component).Debug(msg) }

// DebugCF logs a debug message with a component and extra fields.
func DebugCF(component, msg string, fields map[string]interface{}) {
	entryF(component, fields).Debug(msg)
}

// InfoC logs an info message tagged with a component.
func InfoC(component, msg string) { entry(component).Info(msg) }

// InfoCF logs an info message with a component and extra fields.
func InfoCF(component, msg string, fields map[string]interface{}) {
	entryF(component, fields).Info(msg)
}

// WarnC logs a warning tagged with a component.
func WarnC(component, msg string) { entry(component).Warn(msg) }

// WarnCF logs a warning with a component and extra fields.
func WarnCF(component, msg string, fields map[string]interface{}) {
	entryF(component, fields).Warn(msg)
}

// ErrorC logs an error tagged with a component.
func ErrorC(component, msg string) { entry(component).Error(msg) }

// ErrorCF logs an error with a component and extra fields.
func ErrorCF(component, msg string, fields map[string]interface{}) {
	entryF(component, fields).Error(msg)
}
