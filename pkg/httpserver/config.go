package httpserver

import (
	"net"
	"time"
)

// Config is the environment-driven server configuration.
// PORT wins over HTTP_ADDR when set, so the service runs unchanged on
// platforms that inject a port number.
type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":5000"`
	Port            string        `env:"PORT"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// ListenAddr returns the effective listen address.
func (c Config) ListenAddr() string {
	if c.Port != "" {
		return net.JoinHostPort("", c.Port)
	}
	return c.Addr
}

// NewFromConfig creates a Server from cfg. Zero values keep the defaults.
func NewFromConfig(cfg Config, opts ...Option) *Server {
	configOpts := make([]Option, 0, 5+len(opts))

	if addr := cfg.ListenAddr(); addr != "" {
		configOpts = append(configOpts, WithAddr(addr))
	}
	if cfg.ReadTimeout > 0 {
		configOpts = append(configOpts, WithReadTimeout(cfg.ReadTimeout))
	}
	if cfg.WriteTimeout > 0 {
		configOpts = append(configOpts, WithWriteTimeout(cfg.WriteTimeout))
	}
	if cfg.IdleTimeout > 0 {
		configOpts = append(configOpts, WithIdleTimeout(cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout > 0 {
		configOpts = append(configOpts, WithShutdownTimeout(cfg.ShutdownTimeout))
	}

	return New(append(configOpts, opts...)...)
}
