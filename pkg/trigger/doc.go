// Package trigger exposes the visit cycle to the outside world: an HTTP
// router whose GET /ping runs one cycle and returns the per-queue reports,
// and an optional cron scheduler that runs cycles in-process.
package trigger
