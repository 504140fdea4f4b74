package logger

import (
	"context"
	"log/slog"
)

// Fanout duplicates every log record to each configured slog.Handler.
// The logger uses it to keep the local JSON stream on stdout while
// shipping the same records to Better Stack. Targets fail independently:
// a slow or broken shipping handler never suppresses the local write.
type Fanout struct {
	targets []slog.Handler
}

// NewFanout builds a Fanout over the given handlers. Nil handlers are
// dropped so callers can pass optional targets unconditionally.
func NewFanout(targets ...slog.Handler) *Fanout {
	kept := make([]slog.Handler, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			kept = append(kept, t)
		}
	}
	return &Fanout{targets: kept}
}

// Enabled reports whether at least one target wants records at this level.
func (f *Fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, t := range f.targets {
		if t.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle delivers the record to every enabled target. Each target gets
// its own clone since handlers may retain or mutate the record. The first
// delivery error is returned after all targets have been attempted.
func (f *Fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, t := range f.targets {
		if !t.Enabled(ctx, r.Level) {
			continue
		}
		if err := t.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WithAttrs applies the attributes to every target.
func (f *Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.targets))
	for i, t := range f.targets {
		next[i] = t.WithAttrs(attrs)
	}
	return &Fanout{targets: next}
}

// WithGroup applies the group to every target.
func (f *Fanout) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.targets))
	for i, t := range f.targets {
		next[i] = t.WithGroup(name)
	}
	return &Fanout{targets: next}
}
