package qnet

import (
	"io"
	"log"
)

// Option configures a Net at construction time, following the functional
// options idiom (grounded in the pack's core.WithDirected-style graph
// options) instead of a mutable config struct.
type Option func(*Net)

// WithLogger attaches a logging sink. Without this option, a Net logs to
// io.Discard — there is no process-wide logger and no global registry to
// configure instead.
func WithLogger(logger *log.Logger) Option {
	return func(n *Net) {
		n.logger = logger
	}
}

func defaultLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
