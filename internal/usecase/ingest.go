package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"readvault/internal/domain"
	"readvault/internal/ports"
)

// IngestDeps wires the driven adapters into the ingest workflow.
type IngestDeps struct {
	Manifest   ports.ManifestLoader
	Ledger     ports.ProgressLedger
	Fetcher    ports.ContentFetcher
	Normalizer ports.Normalizer
	Store      ports.DocumentStore
}

// Ingestor walks the manifest, fetches what the ledger has not seen
// fetched yet, and lands normalized documents in the store. Fetch
// failures are recorded per item and never stop the run; only damage to
// the run's own machinery (manifest, ledger, store) is fatal.
type Ingestor struct {
	manifest   ports.ManifestLoader
	ledger     ports.ProgressLedger
	fetcher    ports.ContentFetcher
	normalizer ports.Normalizer
	store      ports.DocumentStore
	logger     *slog.Logger
}

func NewIngestor(deps IngestDeps, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		manifest:   deps.Manifest,
		ledger:     deps.Ledger,
		fetcher:    deps.Fetcher,
		normalizer: deps.Normalizer,
		store:      deps.Store,
		logger:     logger,
	}
}

// Run performs one ingest pass and reports what happened. Interruption
// stops between items; the ledger lets the next run resume where this
// one left off.
func (in *Ingestor) Run(ctx context.Context) (domain.IngestSummary, error) {
	items, err := in.manifest.Load()
	if err != nil {
		return domain.IngestSummary{}, fmt.Errorf("load manifest: %w", err)
	}

	pending := in.ledger.Pending(items)
	summary := domain.IngestSummary{
		ManifestItems:  len(items),
		AlreadyFetched: len(items) - len(pending),
	}
	in.logger.Info("starting ingest",
		"manifest_items", summary.ManifestItems, "pending", len(pending))

	for i, item := range pending {
		if ctx.Err() != nil {
			in.logger.Warn("ingest interrupted", "remaining", len(pending)-i)
			break
		}
		if err := in.processItem(ctx, item, &summary); err != nil {
			return summary, err
		}
	}

	in.logger.Info("ingest complete",
		"fetched", summary.Fetched,
		"already_fetched", summary.AlreadyFetched,
		"failed_retryable", summary.FailedRetryable,
		"failed_permanent", summary.FailedPermanent)
	return summary, nil
}

func (in *Ingestor) processItem(ctx context.Context, item domain.ArchiveItem, summary *domain.IngestSummary) error {
	raw, err := in.fetcher.Fetch(ctx, item.ID)
	if err != nil {
		// An interrupted fetch is not an attempt worth recording.
		if ctx.Err() != nil {
			return nil
		}
		status := domain.StatusFailedRetryable
		if errors.Is(err, domain.ErrFetchPermanent) {
			status = domain.StatusFailedPermanent
			summary.FailedPermanent++
		} else {
			summary.FailedRetryable++
		}
		in.logger.Warn("fetch failed", "id", item.ID, "status", string(status), "error", err)
		if lerr := in.ledger.RecordAttempt(item.ID, status, err); lerr != nil {
			return fmt.Errorf("record attempt for %s: %w", item.ID, lerr)
		}
		return nil
	}

	body := in.normalizer.Normalize(raw)
	// The document must be on disk before the ledger calls it fetched.
	if err := in.store.Write(item, body); err != nil {
		return fmt.Errorf("write document %s: %w", item.ID, err)
	}
	if err := in.ledger.RecordAttempt(item.ID, domain.StatusFetched, nil); err != nil {
		return fmt.Errorf("record fetch for %s: %w", item.ID, err)
	}

	summary.Fetched++
	in.logger.Info("item fetched", "id", item.ID, "title", item.Title)
	return nil
}
