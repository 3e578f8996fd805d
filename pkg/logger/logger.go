package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	charm "github.com/charmbracelet/log"

	errUtils "github.com/serverless/sfauth/errors"
)

// LogLevel is the user-facing log level name.
type LogLevel string

const (
	LogLevelOff     LogLevel = "Off"
	LogLevelTrace   LogLevel = "Trace"
	LogLevelDebug   LogLevel = "Debug"
	LogLevelInfo    LogLevel = "Info"
	LogLevelWarning LogLevel = "Warning"
	LogLevelError   LogLevel = "Error"
)

// TraceLevel sits below charm's debug level.
const TraceLevel = charm.DebugLevel - 1

// OffLevel is above every level charm emits.
const OffLevel = charm.FatalLevel + 1

// Logger wraps a charm logger and adds a trace level.
type Logger struct {
	*charm.Logger
}

// NewLogger wraps an existing charm logger.
func NewLogger(l *charm.Logger) *Logger {
	return &Logger{Logger: l}
}

// NewWithOutput creates a logger writing to w with the package styles.
func NewWithOutput(w io.Writer) *Logger {
	l := charm.NewWithOptions(w, charm.Options{
		ReportTimestamp: false,
		Level:           charm.WarnLevel,
	})
	l.SetStyles(styles())
	return NewLogger(l)
}

// Trace logs at trace level.
func (l *Logger) Trace(msg interface{}, keyvals ...interface{}) {
	l.Log(TraceLevel, msg, keyvals...)
}

// Tracef logs a formatted message at trace level.
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.Log(TraceLevel, fmt.Sprintf(format, args...))
}

// ParseLogLevel maps a level name to the charm level. Names are case-insensitive.
func ParseLogLevel(level string) (charm.Level, error) {
	if level == "" {
		return charm.WarnLevel, nil
	}

	switch LogLevel(strings.ToLower(level)) {
	case "trace":
		return TraceLevel, nil
	case "debug":
		return charm.DebugLevel, nil
	case "info":
		return charm.InfoLevel, nil
	case "warning", "warn":
		return charm.WarnLevel, nil
	case "error":
		return charm.ErrorLevel, nil
	case "off":
		return OffLevel, nil
	default:
		return 0, fmt.Errorf("%w: '%s'. Supported log levels are Trace, Debug, Info, Warning, Error, Off", errUtils.ErrInvalidLogLevel, level)
	}
}

func styles() *charm.Styles {
	s := charm.DefaultStyles()

	label := func(text, color string) lipgloss.Style {
		return lipgloss.NewStyle().
			SetString(text).
			Bold(true).
			Foreground(lipgloss.Color(color))
	}

	s.Levels[TraceLevel] = label("TRCE", "#8A8A8A")
	s.Levels[charm.DebugLevel] = label("DEBU", "#00A3E0")
	s.Levels[charm.InfoLevel] = label("INFO", "#FD5750")
	s.Levels[charm.WarnLevel] = label("WARN", "#FFA500")
	s.Levels[charm.ErrorLevel] = label("ERRO", "#FF0000")
	s.Keys["err"] = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	s.Values["err"] = lipgloss.NewStyle().Bold(true)

	return s
}

func stderr() io.Writer {
	return os.Stderr
}
