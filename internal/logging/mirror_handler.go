package logging

import (
	"context"
	"log/slog"
)

// mirrorHandler hands each record to every handler whose level accepts it.
// diffusedbrush uses it to copy the console/file stream to Sentry.
type mirrorHandler []slog.Handler

func newMirrorHandler(handlers ...slog.Handler) slog.Handler {
	var live mirrorHandler
	for _, h := range handlers {
		if h != nil {
			live = append(live, h)
		}
	}
	switch len(live) {
	case 0:
		return NoopHandler{}
	case 1:
		return live[0]
	}
	return live
}

func (m mirrorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle returns the first handler error but still delivers to the rest.
func (m mirrorHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range m {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m mirrorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m mirrorHandler) WithGroup(name string) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m mirrorHandler) each(fn func(slog.Handler) slog.Handler) mirrorHandler {
	next := make(mirrorHandler, len(m))
	for i, h := range m {
		next[i] = fn(h)
	}
	return next
}

// Mirror returns a logger that writes through base and also to extra. Nil
// entries are skipped, so an unconfigured Sentry handler costs nothing.
func Mirror(base *slog.Logger, extra ...slog.Handler) *slog.Logger {
	if base == nil {
		return slog.New(newMirrorHandler(extra...))
	}
	return slog.New(newMirrorHandler(append([]slog.Handler{base.Handler()}, extra...)...))
}
