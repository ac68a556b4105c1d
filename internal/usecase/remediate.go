package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"readvault/internal/domain"
	"readvault/internal/ports"
)

// Remediator finds ledger records that claim a fetched document the
// store no longer has and removes them, so the next ingest refetches
// those items. The ledger keeps a backup before anything is dropped.
type Remediator struct {
	ledger ports.ProgressLedger
	store  ports.DocumentStore
	logger *slog.Logger
}

func NewRemediator(ledger ports.ProgressLedger, store ports.DocumentStore, logger *slog.Logger) *Remediator {
	return &Remediator{ledger: ledger, store: store, logger: logger}
}

func (r *Remediator) Run(_ context.Context) (domain.RemediationSummary, error) {
	var (
		summary domain.RemediationSummary
		missing []string
	)
	for id, rec := range r.ledger.Records() {
		if rec.Status != domain.StatusFetched {
			continue
		}
		summary.Checked++
		if _, ok := r.store.PathFor(id); !ok {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	for _, id := range missing {
		r.logger.Warn("fetched item has no document", "id", id)
	}

	if len(missing) == 0 {
		r.logger.Info("ledger and document store agree", "checked", summary.Checked)
		return summary, nil
	}

	if err := r.ledger.Remove(missing); err != nil {
		return summary, fmt.Errorf("remove ledger records: %w", err)
	}
	summary.Removed = len(missing)
	r.logger.Info("ledger records removed, next ingest will refetch",
		"checked", summary.Checked, "removed", summary.Removed)
	return summary, nil
}
