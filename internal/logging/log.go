package logging

import (
	"encoding"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var ErrUnknownLogLevel = errors.New("unknown log level (known: debug, info, warn, error)")

// ErrUnknownLogFormat is returned for a format other than console, json or text
var ErrUnknownLogFormat = errors.New("unknown log format (known: console, json, text)")

type LogLevel int

var _ encoding.TextUnmarshaler = (*LogLevel)(nil)

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

const timeFormat = "15:04:05.000 02/01/2006 -07:00"

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "debug"
	case INFO:
		return "info"
	case WARN:
		return "warn"
	case ERROR:
		return "error"
	default:
		return "unknown"
	}
}

func (l *LogLevel) Set(s string) error {
	switch s {
	case "DEBUG", "debug":
		*l = DEBUG
	case "INFO", "info":
		*l = INFO
	case "WARN", "warn":
		*l = WARN
	case "ERROR", "error":
		*l = ERROR
	default:
		return ErrUnknownLogLevel
	}
	return nil
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	return l.Set(string(text))
}

// Logger is the structured key/value logger used across the module
type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
}

var (
	_ Logger = (*ZapLogger)(nil)
	_ Logger = (*SlogLogger)(nil)
	_ Logger = (*nopLogger)(nil)
)

type ZapLogger struct {
	*zap.SugaredLogger
}

// NewZapLogger builds a zap logger writing console or json lines to stderr
func NewZapLogger(level LogLevel, format string) (*ZapLogger, error) {
	var cfg zap.Config
	switch format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "", "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(timeFormat)
	default:
		return nil, ErrUnknownLogFormat
	}
	cfg.Level = zap.NewAtomicLevelAt(toZap(level))
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{SugaredLogger: logger.Sugar()}, nil
}

func toZap(l LogLevel) zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

type SlogLogger struct {
	*slog.Logger
}

// NewSlogLogger builds a text slog logger on stderr
func NewSlogLogger(level LogLevel) *SlogLogger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: toSlog(level),
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Value.Kind() == slog.KindTime {
				attr.Value = slog.StringValue(attr.Value.Time().Local().Format(timeFormat))
			}
			return attr
		},
	})
	return &SlogLogger{Logger: slog.New(handler)}
}

func (l *SlogLogger) Debugw(msg string, keysAndValues ...any) { l.Debug(msg, keysAndValues...) }
func (l *SlogLogger) Infow(msg string, keysAndValues ...any)  { l.Info(msg, keysAndValues...) }
func (l *SlogLogger) Warnw(msg string, keysAndValues ...any)  { l.Warn(msg, keysAndValues...) }
func (l *SlogLogger) Errorw(msg string, keysAndValues ...any) { l.Error(msg, keysAndValues...) }

func toSlog(l LogLevel) slog.Level {
	switch l {
	case DEBUG:
		return slog.LevelDebug
	case WARN:
		return slog.LevelWarn
	case ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopLogger struct{}

func NewNopLogger() Logger {
	return &nopLogger{}
}

func (l *nopLogger) Debugw(msg string, keysAndValues ...any) {}
func (l *nopLogger) Infow(msg string, keysAndValues ...any)  {}
func (l *nopLogger) Warnw(msg string, keysAndValues ...any)  {}
func (l *nopLogger) Errorw(msg string, keysAndValues ...any) {}

// New picks a backend by format: text uses slog, console and json use zap
func New(level LogLevel, format string) (Logger, error) {
	if format == "text" {
		return NewSlogLogger(level), nil
	}
	return NewZapLogger(level, format)
}

// Since is a helper for logging elapsed milliseconds
func Since(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
