package ports

import (
	"context"

	"readvault/internal/domain"
)

// ManifestLoader parses the operator-supplied bulk export into the
// canonical set of archive items.
type ManifestLoader interface {
	Load() ([]domain.ArchiveItem, error)
}

// ProgressLedger is the durable record of per-identifier ingestion
// progress, enabling resumable and idempotent runs.
type ProgressLedger interface {
	RecordAttempt(id string, status domain.FetchStatus, attemptErr error) error
	IsFetched(id string) bool
	Pending(items []domain.ArchiveItem) []domain.ArchiveItem
	Records() map[string]domain.ProgressRecord
	Remove(ids []string) error
	Close() error
}

// ContentFetcher retrieves full content for one identifier at a time
// from the upstream per-item endpoint.
type ContentFetcher interface {
	Fetch(ctx context.Context, id string) (domain.RawContent, error)
}

// Normalizer repairs mis-decoded text and converts raw markup into
// canonical body text.
type Normalizer interface {
	Normalize(raw domain.RawContent) string
}

// DocumentStore persists Documents as individual files with
// merge-on-write semantics.
type DocumentStore interface {
	Write(item domain.ArchiveItem, body string) error
	MergeEnrichment(id string, enr domain.Enrichment) error
	PathFor(id string) (string, bool)
	List() ([]string, error)
	Load(path string) (domain.Document, error)
}

// InferenceClient is a blocking prompt-to-text call against an
// inference backend.
type InferenceClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DatasetWriter materializes the columnar archive snapshot.
type DatasetWriter interface {
	Write(rows []domain.DatasetRow) error
}
