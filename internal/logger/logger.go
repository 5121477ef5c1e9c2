package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// LevelTrace is below debug and logs every frame exchanged with a peer.
const LevelTrace slog.Level = slog.LevelDebug - 4

var (
	ErrLoggerInvalidLogLevel  = fmt.Errorf("invalid log level")
	ErrLoggerInvalidLogFormat = fmt.Errorf("invalid log format")
)

type options struct {
	writer    io.Writer
	addSource bool
}

type Option func(o *options)

// WithWriter redirects log output, stdout by default.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

func WithSource() Option {
	return func(o *options) {
		o.addSource = true
	}
}

func NewLogger(logLevel, logFormat string, opts ...Option) (*slog.Logger, error) {
	slogLevel, err := getSlogLevel(logLevel)
	if err != nil {
		return nil, err
	}

	o := &options{writer: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}

	handlerOpts := &slog.HandlerOptions{Level: slogLevel, AddSource: o.addSource, ReplaceAttr: replaceLevelName}

	switch logFormat {
	case "json":
		return slog.New(slog.NewJSONHandler(o.writer, handlerOpts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(o.writer, handlerOpts)), nil
	case "tint":
		return slog.New(tint.NewHandler(o.writer, &tint.Options{
			Level:       slogLevel,
			AddSource:   o.addSource,
			TimeFormat:  time.StampMilli,
			ReplaceAttr: replaceLevelName,
		})), nil
	}

	return nil, errors.Join(ErrLoggerInvalidLogFormat, fmt.Errorf("log format: %s", logFormat))
}

func replaceLevelName(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) != 0 {
		return a
	}

	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}

	return a
}

func getSlogLevel(logLevel string) (slog.Level, error) {
	switch strings.ToUpper(logLevel) {
	case "TRACE":
		return LevelTrace, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	}

	return slog.LevelInfo, errors.Join(ErrLoggerInvalidLogLevel, fmt.Errorf("log level: %s", logLevel))
}
