package app

import (
	"log/slog"
	"os"

	"github.com/dmitrymomot/dripfeed/pkg/logger"
)

// NewLogger builds the process logger from APP_ENV, with LOG_LEVEL as an
// override, and installs it as the slog default.
func NewLogger(cfg Config, extractors ...logger.ContextExtractor) *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, cfg.Name),
		logger.WithOutput(os.Stderr),
		logger.WithContextExtractors(extractors...),
	}
	if cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevel(logger.ParseLevel(cfg.LogLevel)))
	}
	log := logger.New(opts...)
	logger.SetAsDefault(log)
	return log
}
