package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rivo/tview"
	"github.com/rs/zerolog"
)

type Types int

const (
	Info Types = iota
	Error
	Warn
	Fatal
)

// Logger is a tagged handle onto the process-wide log sinks.
type Logger struct {
	zl  zerolog.Logger
	tag string
}

type manager struct {
	base    zerolog.Logger
	logFile *os.File
}

var (
	logManager *manager
	managerMu  sync.RWMutex
	once       sync.Once
)

// InitLogger wires the shared sinks. With a view and dev set, console output
// goes to the view instead of stderr so it does not tear the TUI.
func InitLogger(dev bool, logPath string, view *tview.TextView) {
	once.Do(func() {
		m := newManager(dev, logPath, view)
		managerMu.Lock()
		logManager = m
		managerMu.Unlock()
	})
}

// SetOutput sends every logger created afterwards to w as JSON lines, at
// debug level. The returned func restores the previous sinks.
func SetOutput(w io.Writer) (restore func()) {
	InitLogger(false, "", nil)

	managerMu.Lock()
	prev := logManager
	logManager = &manager{base: zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()}
	managerMu.Unlock()

	return func() {
		managerMu.Lock()
		logManager = prev
		managerMu.Unlock()
	}
}

func current() *manager {
	managerMu.RLock()
	defer managerMu.RUnlock()
	return logManager
}

func newManager(dev bool, logPath string, view *tview.TextView) *manager {
	m := &manager{}
	var writers []io.Writer

	switch {
	case view != nil && dev:
		writers = append(writers, zerolog.ConsoleWriter{Out: view, NoColor: true, TimeFormat: "15:04:05"})
	case view == nil:
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})
	}

	if logPath != "" {
		timestamp := time.Now().Format("20060102_150405")
		fileName := fmt.Sprintf("relay_log_%s.log", timestamp)
		filePath := filepath.Join(logPath, fileName)

		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %s\n", err)
		} else {
			m.logFile = file
			writers = append(writers, file)
		}
	}

	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	var out io.Writer = io.Discard
	if len(writers) > 0 {
		out = zerolog.MultiLevelWriter(writers...)
	}
	m.base = zerolog.New(out).Level(level).With().Timestamp().Logger()
	return m
}

func NewLogger(tag string) *Logger {
	InitLogger(false, "", nil)
	return &Logger{
		zl:  current().base.With().Str("tag", tag).Logger(),
		tag: tag,
	}
}

// With returns a child logger carrying an extra field.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{
		zl:  l.zl.With().Interface(key, value).Logger(),
		tag: l.tag,
	}
}

// Err returns a child logger carrying err.
func (l *Logger) Err(err error) *Logger {
	return &Logger{
		zl:  l.zl.With().Err(err).Logger(),
		tag: l.tag,
	}
}

func (l *Logger) log(logTypes Types, v ...interface{}) {
	l.zl.WithLevel(logTypes.level()).Msg(fmt.Sprint(v...))
}

func (l *Logger) Debug(v ...interface{}) {
	l.zl.Debug().Msg(fmt.Sprint(v...))
}

func (l *Logger) Info(v ...interface{}) {
	l.log(Info, v...)
}

func (l *Logger) Error(v ...interface{}) {
	l.log(Error, v...)
}

func (l *Logger) Warn(v ...interface{}) {
	l.log(Warn, v...)
}

func (l *Logger) Fatal(v ...interface{}) {
	l.log(Fatal, v...)
	os.Exit(1)
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() {
	if m := current(); m != nil && m.logFile != nil {
		m.logFile.Sync()
		m.logFile.Close()
	}
}

func (t Types) level() zerolog.Level {
	switch t {
	case Info:
		return zerolog.InfoLevel
	case Error:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	case Fatal:
		return zerolog.FatalLevel
	default:
		return zerolog.NoLevel
	}
}
