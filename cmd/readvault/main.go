package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"readvault/internal/app"
	"readvault/internal/config"
	"readvault/internal/logging"
)

const usage = `usage: readvault <command> [args]

commands:
  ingest                fetch manifest items the archive does not have yet
  index                 rebuild the columnar dataset from the document store
  enrich [limit|force]  analyze stored documents with the inference backend
  status                cross-check the manifest against the progress ledger
  remediate             drop ledger records whose documents are gone
`

func main() {
	// Secrets such as the upstream token live in .env during local runs.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg, logger)

	var err error
	switch cmd := os.Args[1]; cmd {
	case "ingest":
		err = application.RunIngest(ctx)
	case "index":
		err = application.RunIndex(ctx)
	case "enrich":
		limit, force, argErr := parseEnrichArgs(os.Args[2:])
		if argErr != nil {
			fmt.Fprintf(os.Stderr, "readvault: %v\n", argErr)
			os.Exit(2)
		}
		err = application.RunEnrich(ctx, limit, force)
	case "status":
		err = application.RunStatus(ctx)
	case "remediate":
		err = application.RunRemediate(ctx)
	default:
		fmt.Fprintf(os.Stderr, "readvault: unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

// parseEnrichArgs accepts a positive batch limit, the word "force", or
// both in either order.
func parseEnrichArgs(args []string) (limit int, force bool, err error) {
	for _, arg := range args {
		if arg == "force" {
			force = true
			continue
		}
		n, convErr := strconv.Atoi(arg)
		if convErr != nil || n < 1 {
			return 0, false, fmt.Errorf("enrich: argument %q is neither a positive limit nor %q", arg, "force")
		}
		limit = n
	}
	return limit, force, nil
}
