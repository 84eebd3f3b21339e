// Command dripctl administers queues: it seeds master records from YAML
// and bulk-loads message files into a queue.
//
//	dripctl seed -file queues.yaml
//	dripctl load -collection annie -file annie.txt -start 1
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/dripfeed/internal/app"
	"github.com/dmitrymomot/dripfeed/pkg/config"
	"github.com/dmitrymomot/dripfeed/pkg/drip"
	"github.com/dmitrymomot/dripfeed/pkg/logger"
)

const usage = `usage:
  dripctl seed -file <queues.yaml>
  dripctl load -collection <name> -file <messages.txt> [-start <line>]
`

var errUsage = errors.New("invalid usage")

// indexer is implemented by backends that index collections on demand.
type indexer interface {
	EnsureIndexes(ctx context.Context, collection string) error
}

func ensureIndexes(ctx context.Context, backend app.Backend, collection string) error {
	if ix, ok := backend.(indexer); ok {
		return ix.EnsureIndexes(ctx, collection)
	}
	return nil
}

func main() {
	var cfg app.Config
	config.MustLoad(&cfg)
	log := app.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		log.Error("dripctl failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg app.Config, log *slog.Logger, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	var cmd func(context.Context, app.Backend, []string, io.Writer) error
	switch args[0] {
	case "seed":
		cmd = seed
	case "load":
		cmd = load
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.WithoutCancel(ctx)) }()

	return cmd(ctx, store.Backend, args[1:], out)
}

func seed(ctx context.Context, backend app.Backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	file := fs.String("file", "", "YAML file with a top-level queues list")
	if err := fs.Parse(args); err != nil || *file == "" {
		return errUsage
	}

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := drip.ParseMasterYAML(f)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := backend.UpsertMaster(ctx, rec); err != nil {
			return fmt.Errorf("seed %q: %w", rec.CollectionName, err)
		}
		if err := ensureIndexes(ctx, backend, rec.CollectionName); err != nil {
			return err
		}
		fmt.Fprintf(out, "seeded %s\n", rec.CollectionName)
	}
	return nil
}

func load(ctx context.Context, backend app.Backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("load", flag.ContinueOnError)
	collection := fs.String("collection", "", "queue collection name")
	file := fs.String("file", "", "message file, one text|media per line")
	start := fs.Int("start", 1, "first line to import (1-based)")
	if err := fs.Parse(args); err != nil || *collection == "" || *file == "" {
		return errUsage
	}

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := ensureIndexes(ctx, backend, *collection); err != nil {
		return err
	}

	n, err := drip.LoadBulk(ctx, backend.MessageStore(*collection), f, *start)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "loaded %d messages into %s\n", n, *collection)
	return nil
}
