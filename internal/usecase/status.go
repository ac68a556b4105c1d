package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"readvault/internal/domain"
	"readvault/internal/ports"
)

// StatusReporter cross-checks the manifest against the progress ledger:
// what is fetched, what failed and how, what was never attempted. Items
// needing attention can be written to a CSV for triage.
type StatusReporter struct {
	manifest   ports.ManifestLoader
	ledger     ports.ProgressLedger
	reportPath string
	logger     *slog.Logger
}

func NewStatusReporter(manifest ports.ManifestLoader, ledger ports.ProgressLedger, reportPath string, logger *slog.Logger) *StatusReporter {
	return &StatusReporter{manifest: manifest, ledger: ledger, reportPath: reportPath, logger: logger}
}

type statusRow struct {
	item     domain.ArchiveItem
	rec      domain.ProgressRecord
	recorded bool
}

func (st *StatusReporter) Run(_ context.Context) (domain.StatusSummary, error) {
	items, err := st.manifest.Load()
	if err != nil {
		return domain.StatusSummary{}, fmt.Errorf("load manifest: %w", err)
	}
	records := st.ledger.Records()

	summary := domain.StatusSummary{ManifestItems: len(items)}
	var attention []statusRow
	for _, item := range items {
		rec, ok := records[item.ID]
		switch {
		case !ok:
			summary.Pending++
			attention = append(attention, statusRow{item: item})
		case rec.Status == domain.StatusFetched:
			summary.Fetched++
		case rec.Status == domain.StatusFailedPermanent:
			summary.FailedPermanent++
			attention = append(attention, statusRow{item: item, rec: rec, recorded: true})
		default:
			summary.FailedRetryable++
			attention = append(attention, statusRow{item: item, rec: rec, recorded: true})
		}
	}

	st.logger.Info("archive status",
		"manifest_items", summary.ManifestItems,
		"fetched", summary.Fetched,
		"pending", summary.Pending,
		"failed_retryable", summary.FailedRetryable,
		"failed_permanent", summary.FailedPermanent)

	if len(attention) == 0 {
		st.logger.Info("every manifest item is fetched")
		return summary, nil
	}
	if st.reportPath == "" {
		return summary, nil
	}

	if err := st.writeReport(attention); err != nil {
		return summary, fmt.Errorf("write status report: %w", err)
	}
	st.logger.Info("status report written", "path", st.reportPath, "rows", len(attention))
	return summary, nil
}

func (st *StatusReporter) writeReport(rows []statusRow) error {
	f, err := os.Create(st.reportPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"identifier", "title", "url", "folder", "status", "attempts", "last_error"}); err != nil {
		return err
	}
	for _, row := range rows {
		status := string(domain.StatusPending)
		attempts := "0"
		lastErr := ""
		if row.recorded {
			status = string(row.rec.Status)
			attempts = strconv.Itoa(row.rec.Attempts)
			lastErr = row.rec.LastError
		}
		if err := w.Write([]string{row.item.ID, row.item.Title, row.item.URL, row.item.Folder, status, attempts, lastErr}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
