package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readvault/internal/domain"
)

func TestRemediateRemovesOrphanedRecords(t *testing.T) {
	ledger := newFakeLedger()
	ledger.records["A"] = domain.ProgressRecord{ID: "A", Status: domain.StatusFetched}
	ledger.records["B"] = domain.ProgressRecord{ID: "B", Status: domain.StatusFetched}
	ledger.records["C"] = domain.ProgressRecord{ID: "C", Status: domain.StatusFailedRetryable}

	store := newFakeStore()
	store.add(domain.Document{Header: domain.Header{ID: "A"}, Body: "present"})

	summary, err := NewRemediator(ledger, store, discard()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Checked, "only fetched records are checked")
	assert.Equal(t, 1, summary.Removed)
	assert.Equal(t, []string{"B"}, ledger.removed)
	assert.NotContains(t, ledger.records, "B", "next ingest sees B as pending again")
	assert.Contains(t, ledger.records, "C", "failed records are left for the next ingest anyway")
}

func TestRemediateAgreementIsNoOp(t *testing.T) {
	ledger := newFakeLedger()
	ledger.records["A"] = domain.ProgressRecord{ID: "A", Status: domain.StatusFetched}
	store := newFakeStore()
	store.add(domain.Document{Header: domain.Header{ID: "A"}, Body: "present"})

	summary, err := NewRemediator(ledger, store, discard()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RemediationSummary{Checked: 1}, summary)
	assert.Empty(t, ledger.removed)
}

func TestRemediateRemovesInSortedOrder(t *testing.T) {
	ledger := newFakeLedger()
	for _, id := range []string{"zulu", "alpha", "mike"} {
		ledger.records[id] = domain.ProgressRecord{ID: id, Status: domain.StatusFetched}
	}

	summary, err := NewRemediator(ledger, newFakeStore(), discard()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Removed)
	assert.Equal(t, []string{"alpha", "mike", "zulu"}, ledger.removed)
}
