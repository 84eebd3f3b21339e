// Package httpserver runs the trigger endpoint: an http.Server with
// env-driven timeouts, graceful shutdown on context cancellation or
// SIGINT/SIGTERM, and liveness/readiness handlers.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Run wraps listen failures with ErrStart and Shutdown wraps shutdown
// failures with ErrShutdown.
package httpserver
