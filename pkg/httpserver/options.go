package httpserver

import (
	"log/slog"
	"time"
)

// Option configures the HTTP server.
type Option func(*config)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	if addr == "" {
		panic("httpserver: WithAddr: empty address")
	}
	return func(c *config) { c.addr = addr }
}

// WithReadTimeout limits reading the whole request.
func WithReadTimeout(d time.Duration) Option {
	mustPositive("WithReadTimeout", d)
	return func(c *config) { c.readTimeout = d }
}

// WithWriteTimeout limits writing the response. A visit cycle runs inside
// the request, so this must exceed the send timeout times the queue count.
func WithWriteTimeout(d time.Duration) Option {
	mustPositive("WithWriteTimeout", d)
	return func(c *config) { c.writeTimeout = d }
}

// WithIdleTimeout limits keep-alive idle time.
func WithIdleTimeout(d time.Duration) Option {
	mustPositive("WithIdleTimeout", d)
	return func(c *config) { c.idleTimeout = d }
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	mustPositive("WithShutdownTimeout", d)
	return func(c *config) { c.shutdownTimeout = d }
}

// WithLogger sets the server logger. Nil keeps the discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOnListen registers a callback invoked with the bound address once the
// listener is open.
func WithOnListen(fn func(addr string)) Option {
	if fn == nil {
		panic("httpserver: WithOnListen: nil callback")
	}
	return func(c *config) { c.onListen = append(c.onListen, fn) }
}

func mustPositive(name string, d time.Duration) {
	if d <= 0 {
		panic("httpserver: " + name + ": duration must be > 0")
	}
}
