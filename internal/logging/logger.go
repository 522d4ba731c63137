package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the logging surface used across the service
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	WithField(key string, value any) Logger
}

type logrusLogger struct {
	entry *logrus.Entry
}

func (l *logrusLogger) Debugf(format string, args ...any) {
	l.entry.Debugf(format, args...)
}

func (l *logrusLogger) Infof(format string, args ...any) {
	l.entry.Infof(format, args...)
}

func (l *logrusLogger) Warnf(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *logrusLogger) Errorf(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

func (l *logrusLogger) WithField(key string, value any) Logger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}

var (
	rootMu sync.RWMutex
	root   = logrus.New()
)

// Configure sets the level and formatter of the root logger. Production
// environments log JSON, everything else logs text.
func Configure(level, env string) {
	rootMu.Lock()
	defer rootMu.Unlock()

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	root.SetLevel(lvl)
	root.SetOutput(os.Stdout)

	if strings.EqualFold(env, "production") {
		root.SetFormatter(&logrus.JSONFormatter{})
	} else {
		root.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// New returns a logger tagged with a component name
func New(component string) Logger {
	rootMu.RLock()
	defer rootMu.RUnlock()

	return &logrusLogger{entry: root.WithField("component", component)}
}

// IsDebug reports whether debug logging is enabled
func IsDebug() bool {
	rootMu.RLock()
	defer rootMu.RUnlock()

	return root.IsLevelEnabled(logrus.DebugLevel)
}
