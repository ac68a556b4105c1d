package domain

import "time"

// FetchStatus enumerates ledger outcomes for one identifier.
type FetchStatus string

const (
	StatusPending         FetchStatus = "pending"
	StatusFetched         FetchStatus = "fetched"
	StatusFailedRetryable FetchStatus = "failed-retryable"
	StatusFailedPermanent FetchStatus = "failed-permanent"
)

// ProgressRecord is the durable per-identifier ingestion state. Status
// is monotonic once it reaches StatusFetched: later failures never
// revert it. Attempts counts recorded outcomes, not HTTP retries.
type ProgressRecord struct {
	ID          string      `json:"id"`
	Status      FetchStatus `json:"status"`
	Attempts    int         `json:"attempts"`
	LastAttempt time.Time   `json:"last_attempt"`
	LastError   string      `json:"last_error,omitempty"`
}
