package logging

import (
	"context"
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"
)

// SentryHandler forwards error-level records to a Sentry hub. Lower levels
// become breadcrumbs on the hub scope so captured events carry the lead-up.
type SentryHandler struct {
	hub    *sentry.Hub
	attrs  []slog.Attr
	groups []string
}

// NewSentryHandler returns nil when hub is nil so Mirror drops it.
func NewSentryHandler(hub *sentry.Hub) slog.Handler {
	if hub == nil {
		return nil
	}
	return &SentryHandler{hub: hub}
}

func (h *SentryHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (h *SentryHandler) Handle(_ context.Context, record slog.Record) error {
	kvs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&kvs, h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, h.groups, attr)
		return true
	})

	data := make(map[string]any, len(kvs))
	var recordErr error
	for _, kv := range kvs {
		if kv.key == "error" {
			if err, ok := kv.value.Any().(error); ok {
				recordErr = err
			}
		}
		data[kv.key] = plainValue(kv.value)
	}

	if record.Level < slog.LevelError {
		h.hub.AddBreadcrumb(&sentry.Breadcrumb{
			Category:  "log",
			Message:   record.Message,
			Level:     sentryLevel(record.Level),
			Data:      data,
			Timestamp: record.Time,
		}, nil)
		return nil
	}

	h.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetContext("log", data)
		for _, key := range []string{FieldComponent, FieldStage, FieldRunID, FieldEventType} {
			if value, ok := data[key].(string); ok && value != "" {
				scope.SetTag(key, value)
			}
		}
		if recordErr == nil {
			recordErr = errors.New(record.Message)
		}
		h.hub.CaptureException(recordErr)
	})
	return nil
}

func (h *SentryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SentryHandler{
		hub:    h.hub,
		attrs:  append(append([]slog.Attr(nil), h.attrs...), attrs...),
		groups: h.groups,
	}
}

func (h *SentryHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &SentryHandler{
		hub:    h.hub,
		attrs:  h.attrs,
		groups: append(append([]string(nil), h.groups...), name),
	}
}

func sentryLevel(level slog.Level) sentry.Level {
	switch {
	case level >= slog.LevelError:
		return sentry.LevelError
	case level >= slog.LevelWarn:
		return sentry.LevelWarning
	case level >= slog.LevelInfo:
		return sentry.LevelInfo
	default:
		return sentry.LevelDebug
	}
}
