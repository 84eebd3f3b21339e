package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Option adjusts a single Load call.
type Option func(*options)

type options struct {
	files    []string
	required bool
	prefix   string
}

// WithEnvFiles reads the given files instead of the default ".env".
// Unlike the default file, listed files must exist.
func WithEnvFiles(paths ...string) Option {
	return func(o *options) {
		o.files = paths
		o.required = true
	}
}

// WithPrefix prepends prefix to every env tag of the struct.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// Load reads env files and parses the environment into v.
//
// Example:
//
//	var app AppConfig
//	if err := config.Load(&app, config.WithPrefix("DRIP_")); err != nil {
//		// Handle error
//	}
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	o := options{files: []string{".env"}}
	for _, opt := range opts {
		opt(&o)
	}

	for _, f := range o.files {
		if err := godotenv.Load(f); err != nil {
			// The default .env file is optional.
			if !o.required && errors.Is(err, os.ErrNotExist) {
				continue
			}
			return errors.Join(ErrEnvFile, fmt.Errorf("%s: %w", f, err))
		}
	}

	if err := env.ParseWithOptions(v, env.Options{Prefix: o.prefix}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
// Intended for main packages where a broken config should stop startup.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
