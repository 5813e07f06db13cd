// Package triage layers locally persisted kanban state over provider mail.
//
// Overlays owns the transition rules for a single email's record. Merger
// reconciles a freshly fetched page of emails with those records and
// resolves snoozes whose deadline has passed.
package triage

import (
	"io"
	"log/slog"
	"time"
)

const defaultWriteLimit = 8

type options struct {
	now        func() time.Time
	writeLimit int
	logger     *slog.Logger
}

// Option configures Overlays and Merger.
type Option func(*options)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithWriteLimit bounds how many expired snoozes Merge resolves at once.
func WithWriteLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.writeLimit = n
		}
	}
}

// WithLogger sets the logger used for resolution events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{
		now:        time.Now,
		writeLimit: defaultWriteLimit,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
