// Package logger builds *slog.Logger instances for dripfeed services.
//
// New returns a logger configured by functional options: output format (json
// or text), minimum level, static attributes, and ContextExtractor callbacks
// that pull request scoped values (such as a request id) out of the context
// on every record.
//
// The attribute helpers in attr.go keep key names consistent across packages:
// a queue is always logged under "queue", a period key under "period_key" and
// so on.
//
// # Usage
//
//	log := logger.New(
//		logger.WithEnvironment(os.Getenv("APP_ENV"), "dripfeed"),
//		logger.WithContextExtractors(requestIDExtractor),
//	)
//	log.InfoContext(ctx, "message sent", logger.Queue("annie"), logger.PeriodKey("2024-03-07"))
package logger
