package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"
)

// levelName renders slog levels including the custom TRACE level
func levelName(level slog.Level) string {
	if level <= traceLevelValue {
		return "TRACE"
	}
	return level.String()
}

// replaceAttrFunc builds the ReplaceAttr hook shared by text and JSON handlers.
// Text output drops the timestamp; JSON output keeps it in the configured timezone.
func replaceAttrFunc(tz *time.Location, keepTime bool) func(groups []string, a slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if len(groups) > 0 {
			return a
		}

		switch a.Key {
		case slog.TimeKey:
			if !keepTime {
				return slog.Attr{}
			}
			if t, ok := a.Value.Any().(time.Time); ok && tz != nil {
				return slog.String(slog.TimeKey, t.In(tz).Format(time.RFC3339))
			}
		case slog.LevelKey:
			if level, ok := a.Value.Any().(slog.Level); ok {
				return slog.String(slog.LevelKey, levelName(level))
			}
		default:
			if strings.Contains(strings.ToLower(a.Key), "password") {
				return slog.String(a.Key, "[REDACTED]")
			}
		}
		return a
	}
}

// newTextHandler creates the human-readable console handler
func newTextHandler(w io.Writer, level slog.Level, tz *time.Location) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttrFunc(tz, false),
	})
}

// newJSONHandler creates the machine-readable file handler
func newJSONHandler(w io.Writer, level slog.Level, tz *time.Location) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttrFunc(tz, true),
	})
}

// NewSlogLogger returns a standalone Logger writing JSON to w.
// A nil writer discards output; a nil timezone means UTC.
func NewSlogLogger(w io.Writer, level LogLevel, tz *time.Location) Logger {
	if w == nil {
		w = io.Discard
	}
	if tz == nil {
		tz = time.UTC
	}

	slogLevel := parseSlogLevel(level)
	return &moduleLogger{
		logger: slog.New(newJSONHandler(w, slogLevel, tz)),
		level:  slogLevel,
	}
}

// fanOut returns a handler that forwards each record to every handler
func fanOut(handlers ...slog.Handler) slog.Handler {
	if len(handlers) == 1 {
		return handlers[0]
	}
	return fanOutHandler(handlers)
}

type fanOutHandler []slog.Handler

func (h fanOutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

//nolint:gocritic // slog.Handler interface requires record by value
func (h fanOutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range h {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h fanOutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanOutHandler, len(h))
	for i, handler := range h {
		next[i] = handler.WithAttrs(attrs)
	}
	return next
}

func (h fanOutHandler) WithGroup(name string) slog.Handler {
	next := make(fanOutHandler, len(h))
	for i, handler := range h {
		next[i] = handler.WithGroup(name)
	}
	return next
}
