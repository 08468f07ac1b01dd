// Package xlog is the module's structured logger, adapted from the
// teacher's logger package down to a single leveled logger — a
// read-only inspection tool has no concurrent writers that need split
// info/error streams.
package xlog

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

var base = logrus.New()

func init() {
	base.SetFormatter(&callerFormatter{})
	base.SetOutput(os.Stderr)
	base.SetLevel(logrus.InfoLevel)
	if os.Getenv("INNODB_DEBUG") != "" {
		base.SetLevel(logrus.DebugLevel)
	}
}

// callerFormatter renders "[time] [LEVL] (file:func:line) message", matching
// the teacher's CustomFormatter layout.
type callerFormatter struct{}

func (f *callerFormatter) Format(e *logrus.Entry) ([]byte, error) {
	ts := e.Time.Format("15:04:05 2006/01/02")
	level := strings.ToUpper(e.Level.String())
	if len(level) > 4 {
		level = level[:4]
	}
	return []byte(fmt.Sprintf("[%s] [%s] (%s) %s\n", ts, level, caller(), e.Message)), nil
}

func caller() string {
	for i := 2; i < 20; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if strings.Contains(file, "sirupsen/logrus") || strings.Contains(file, "internal/xlog") {
			continue
		}
		name := runtime.FuncForPC(pc).Name()
		return fmt.Sprintf("%s:%s:%d", filepath.Base(file), name, line)
	}
	return "unknown:unknown:0"
}

// SetLevel overrides the logger's minimum level explicitly, e.g. from a
// --verbose CLI flag.
func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		base.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		base.SetLevel(logrus.WarnLevel)
	case "error":
		base.SetLevel(logrus.ErrorLevel)
	default:
		base.SetLevel(logrus.InfoLevel)
	}
}

func Debugf(format string, args ...interface{}) { base.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { base.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { base.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { base.Errorf(format, args...) }
