// Command dripfeed serves the visit trigger: every GET /ping releases at
// most one pending message per queue whose period is still open.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/dripfeed/internal/app"
	"github.com/dmitrymomot/dripfeed/pkg/config"
	"github.com/dmitrymomot/dripfeed/pkg/drip"
	"github.com/dmitrymomot/dripfeed/pkg/drip/redislock"
	"github.com/dmitrymomot/dripfeed/pkg/httpserver"
	"github.com/dmitrymomot/dripfeed/pkg/logger"
	"github.com/dmitrymomot/dripfeed/pkg/redis"
	"github.com/dmitrymomot/dripfeed/pkg/trigger"
)

func main() {
	var cfg app.Config
	config.MustLoad(&cfg)

	log := app.NewLogger(cfg, trigger.RequestIDExtractor)
	if err := run(cfg, log); err != nil {
		log.Error("dripfeed stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(cfg app.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Warn("failed to close store", logger.Error(err))
		}
	}()

	channels, err := app.NewChannels(cfg, log)
	if err != nil {
		return err
	}

	checks := []httpserver.Check{store.Check}
	runnerOpts := []drip.RunnerOption{
		drip.WithRunnerLogger(log),
		drip.WithLockTTL(cfg.LockTTL),
	}

	if cfg.Redis.Enabled() {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		runnerOpts = append(runnerOpts, drip.WithLocker(redislock.New(client)))
		checks = append(checks, httpserver.Check{Name: "redis", Func: redis.Healthcheck(client)})
		log.Info("visit lock: redis")
	} else {
		runnerOpts = append(runnerOpts, drip.WithLocker(drip.NewMemoryLocker()))
		log.Info("visit lock: in-process")
	}

	registry := drip.NewRegistry(store.Backend, store.Backend, channels,
		drip.WithRegistryLogger(log),
		drip.WithQueueOptions(
			drip.WithLogger(log),
			drip.WithSendTimeout(cfg.SendTimeout),
		),
	)
	runner := drip.NewRunner(registry, runnerOpts...)

	if cfg.VisitSchedule != "" {
		sched, err := trigger.NewScheduler(cfg.VisitSchedule, runner, log.With(logger.Component("scheduler")))
		if err != nil {
			return err
		}
		sched.Start(ctx)
		defer sched.Stop()
	}

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log.With(logger.Component("http"))))
	return srv.Run(ctx, trigger.NewRouter(runner, log, checks...))
}
