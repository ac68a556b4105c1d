package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"readvault/internal/config"
	"readvault/internal/infrastructure/dataset"
	"readvault/internal/infrastructure/inference"
	"readvault/internal/infrastructure/ledger"
	"readvault/internal/infrastructure/manifest"
	"readvault/internal/infrastructure/normalize"
	"readvault/internal/infrastructure/store"
	"readvault/internal/infrastructure/upstream"
	"readvault/internal/logging"
	"readvault/internal/usecase"
)

// App wires configuration into runnable pipeline stages. Each Run
// method opens exactly the resources its stage needs and releases them
// before returning; the binary is a short-lived pipeline step, not a
// daemon.
type App struct {
	cfg    config.Config
	logger *slog.Logger
}

// New builds an App. Every log line of a run carries the same run_id so
// interleaved cron output stays attributable.
func New(cfg config.Config, baseLogger *slog.Logger) *App {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	return &App{cfg: cfg, logger: baseLogger.With("run_id", uuid.NewString())}
}

// RunIngest fetches every manifest item the ledger does not yet call
// fetched and lands the results in the document store.
func (a *App) RunIngest(ctx context.Context) error {
	led, err := ledger.Open(a.cfg.Ingest.LedgerPath, a.logger.With("component", "ledger"))
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer led.Close()

	st, err := store.Open(a.cfg.Store.Path, a.logger.With("component", "store"))
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}

	fetcher := upstream.NewClient(upstream.Config{
		Endpoint:       a.cfg.Ingest.UpstreamEndpoint,
		Token:          a.cfg.Ingest.UpstreamToken,
		RateDelay:      a.cfg.Ingest.RateDelay,
		MaxRetries:     a.cfg.Ingest.MaxRetries,
		InitialBackoff: a.cfg.Ingest.InitialBackoff,
		Timeout:        a.cfg.Ingest.FetchTimeout,
	}, a.logger.With("component", "fetcher"))

	ingestor := usecase.NewIngestor(usecase.IngestDeps{
		Manifest:   manifest.NewLoader(a.cfg.Ingest.ManifestPath, a.logger.With("component", "manifest")),
		Ledger:     led,
		Fetcher:    fetcher,
		Normalizer: normalize.NewService(a.logger.With("component", "normalize")),
		Store:      st,
	}, a.logger.With("component", "ingest"))

	_, err = ingestor.Run(ctx)
	return err
}

// RunIndex rebuilds the columnar dataset from the document store.
func (a *App) RunIndex(ctx context.Context) error {
	st, err := store.Open(a.cfg.Store.Path, a.logger.With("component", "store"))
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}

	writer := dataset.NewWriter(a.cfg.Index.DatasetPath, a.logger.With("component", "dataset"))
	_, err = usecase.NewIndexer(st, writer, a.logger.With("component", "index")).Run(ctx)
	return err
}

// RunEnrich analyzes stored documents with the configured inference
// backend. A limit of zero means the configured batch size; force
// reprocesses documents whose enrichment is already current.
func (a *App) RunEnrich(ctx context.Context, limit int, force bool) error {
	st, err := store.Open(a.cfg.Store.Path, a.logger.With("component", "store"))
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}

	client, err := inference.New(ctx, a.cfg.Enrichment)
	if err != nil {
		return fmt.Errorf("inference backend: %w", err)
	}
	if c, ok := client.(io.Closer); ok {
		defer c.Close()
	}

	engine := usecase.NewEngine(st, client, usecase.EngineParams{
		SchemaVersion:  a.cfg.Enrichment.SchemaVersion,
		MaxPromptChars: a.cfg.Enrichment.MaxPromptChars,
		Timeout:        a.cfg.Enrichment.Timeout,
	}, a.logger.With("component", "enrich"))

	enricher := usecase.NewEnricher(st, engine,
		a.cfg.Enrichment.MaxBatchSize, a.cfg.Enrichment.Workers,
		a.logger.With("component", "enrich"))

	_, err = enricher.Run(ctx, limit, force)
	return err
}

// RunStatus reports manifest coverage and optionally writes the
// attention CSV.
func (a *App) RunStatus(ctx context.Context) error {
	led, err := ledger.Open(a.cfg.Ingest.LedgerPath, a.logger.With("component", "ledger"))
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer led.Close()

	loader := manifest.NewLoader(a.cfg.Ingest.ManifestPath, a.logger.With("component", "manifest"))
	_, err = usecase.NewStatusReporter(loader, led, a.cfg.Status.ReportPath, a.logger.With("component", "status")).Run(ctx)
	return err
}

// RunRemediate drops ledger records whose documents are missing from
// the store so the next ingest refetches them.
func (a *App) RunRemediate(ctx context.Context) error {
	led, err := ledger.Open(a.cfg.Ingest.LedgerPath, a.logger.With("component", "ledger"))
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer led.Close()

	st, err := store.Open(a.cfg.Store.Path, a.logger.With("component", "store"))
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}

	_, err = usecase.NewRemediator(led, st, a.logger.With("component", "remediate")).Run(ctx)
	return err
}
