package domain

import "errors"

// Failure categories for the pipeline. Per-item failures are recorded
// and skipped; only structural failures (unreadable manifest,
// inaccessible store or dataset target) abort a run.
var (
	ErrManifestFormat   = errors.New("manifest missing required columns")
	ErrFetchTransient   = errors.New("transient fetch failure")
	ErrFetchPermanent   = errors.New("permanent fetch failure")
	ErrHeaderParse      = errors.New("document header unparsable")
	ErrEnrichmentParse  = errors.New("enrichment response unparsable")
	ErrInferenceTimeout = errors.New("inference call timed out")
	ErrNotFound         = errors.New("document not found")
)
