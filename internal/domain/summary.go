package domain

// IngestSummary aggregates one ingestion run by outcome category.
type IngestSummary struct {
	ManifestItems   int
	AlreadyFetched  int
	Fetched         int
	FailedRetryable int
	FailedPermanent int
}

// IndexSummary reports one dataset rebuild.
type IndexSummary struct {
	Indexed int
	Skipped int
}

// EnrichSummary reports one enrichment run.
type EnrichSummary struct {
	Succeeded int
	Skipped   int
	Failed    int
}

// StatusSummary breaks the manifest down by ledger state.
type StatusSummary struct {
	ManifestItems   int
	Fetched         int
	FailedRetryable int
	FailedPermanent int
	Pending         int
}

// RemediationSummary reports ledger entries dropped because their
// documents no longer exist in the store.
type RemediationSummary struct {
	Checked int
	Removed int
}
