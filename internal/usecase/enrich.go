package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"readvault/internal/domain"
	"readvault/internal/ports"
	"readvault/pkg/resilience"
)

// EngineParams bounds a single enrichment call.
type EngineParams struct {
	SchemaVersion  int
	MaxPromptChars int
	Timeout        time.Duration
}

// Engine runs the enrichment state machine for one document: build the
// prompt, call the model under a deadline, parse the labeled response,
// merge the block back into the file. A badly formatted response earns
// exactly one retry with a stricter prompt.
type Engine struct {
	store  ports.DocumentStore
	infer  ports.InferenceClient
	params EngineParams
	logger *slog.Logger
}

func NewEngine(store ports.DocumentStore, infer ports.InferenceClient, params EngineParams, logger *slog.Logger) *Engine {
	return &Engine{store: store, infer: infer, params: params, logger: logger}
}

// Eligible reports whether the document still needs enrichment under
// the current schema version. Blocks written by an older schema are
// redone; current ones are final.
func (e *Engine) Eligible(doc domain.Document) bool {
	enr := doc.Header.Enrichment
	return enr == nil || enr.SchemaVersion < e.params.SchemaVersion
}

// Process enriches one document and merges the result into its file.
// Parse failures and timeouts get one more attempt; a parse failure's
// retry carries the reformat instruction.
func (e *Engine) Process(ctx context.Context, doc domain.Document) error {
	enr, err := e.generate(ctx, doc, false)
	if retryableEnrichment(err) {
		e.logger.Warn("enrichment attempt failed, retrying once", "id", doc.Header.ID, "error", err)
		enr, err = e.generate(ctx, doc, errors.Is(err, domain.ErrEnrichmentParse))
	}
	if err != nil {
		return err
	}

	enr.SchemaVersion = e.params.SchemaVersion
	if err := e.store.MergeEnrichment(doc.Header.ID, enr); err != nil {
		return fmt.Errorf("merge enrichment: %w", err)
	}
	return nil
}

func retryableEnrichment(err error) bool {
	return errors.Is(err, domain.ErrEnrichmentParse) || errors.Is(err, domain.ErrInferenceTimeout)
}

func (e *Engine) generate(ctx context.Context, doc domain.Document, strict bool) (domain.Enrichment, error) {
	prompt := buildEnrichmentPrompt(doc.Header.Title, doc.Body, e.params.MaxPromptChars, strict)

	var raw string
	err := resilience.WithTimeout(ctx, e.params.Timeout, "inference", func(ctx context.Context) error {
		var genErr error
		raw, genErr = e.infer.Generate(ctx, prompt)
		return genErr
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.Enrichment{}, fmt.Errorf("%w: no answer within %v", domain.ErrInferenceTimeout, e.params.Timeout)
		}
		return domain.Enrichment{}, fmt.Errorf("inference: %w", err)
	}

	return parseEnrichment(raw)
}

// Enricher selects documents that need enrichment and drives the engine
// across them. One worker is the default; the model server is usually
// the bottleneck, but a small pool helps against hosted backends.
type Enricher struct {
	store    ports.DocumentStore
	engine   *Engine
	maxBatch int
	workers  int
	logger   *slog.Logger
}

func NewEnricher(store ports.DocumentStore, engine *Engine, maxBatch, workers int, logger *slog.Logger) *Enricher {
	if workers < 1 {
		workers = 1
	}
	return &Enricher{store: store, engine: engine, maxBatch: maxBatch, workers: workers, logger: logger}
}

// Run enriches up to limit eligible documents (the configured batch cap
// when limit is zero). force re-enriches documents that already carry a
// current block. Per-document failures are counted, never fatal.
func (s *Enricher) Run(ctx context.Context, limit int, force bool) (domain.EnrichSummary, error) {
	paths, err := s.store.List()
	if err != nil {
		return domain.EnrichSummary{}, fmt.Errorf("list documents: %w", err)
	}
	if limit <= 0 {
		limit = s.maxBatch
	}

	var (
		batch   []domain.Document
		summary domain.EnrichSummary
	)
	for _, path := range paths {
		if limit > 0 && len(batch) >= limit {
			break
		}
		doc, err := s.store.Load(path)
		if err != nil {
			s.logger.Warn("skipping unreadable document", "path", path, "error", err)
			summary.Skipped++
			continue
		}
		if strings.TrimSpace(doc.Body) == "" {
			summary.Skipped++
			continue
		}
		if !force && !s.engine.Eligible(doc) {
			summary.Skipped++
			continue
		}
		batch = append(batch, doc)
	}

	if len(batch) == 0 {
		s.logger.Info("no documents need enrichment", "skipped", summary.Skipped)
		return summary, nil
	}
	s.logger.Info("enriching documents", "selected", len(batch), "workers", s.workers)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, doc := range batch {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			err := s.engine.Process(gctx, doc)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				summary.Succeeded++
				s.logger.Info("document enriched", "id", doc.Header.ID, "title", doc.Header.Title)
			case errors.Is(err, context.Canceled):
				return err
			default:
				summary.Failed++
				s.logger.Warn("enrichment failed", "id", doc.Header.ID, "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if !errors.Is(err, context.Canceled) {
			return summary, err
		}
		s.logger.Warn("enrichment interrupted",
			"succeeded", summary.Succeeded, "failed", summary.Failed)
		return summary, nil
	}

	s.logger.Info("enrichment complete",
		"succeeded", summary.Succeeded, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}
