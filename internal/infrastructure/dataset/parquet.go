// Package dataset persists the rebuilt archive index as a parquet
// file. The dataset is derived data: every rebuild replaces it
// wholesale rather than patching rows in place.
package dataset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"readvault/internal/domain"
	"readvault/internal/ports"
)

type Writer struct {
	path   string
	logger *slog.Logger
}

var _ ports.DatasetWriter = (*Writer)(nil)

func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

// Write stages the rows into a sibling temp file and swaps it in with a
// rename, so a reader never observes a partial dataset and a failed
// rebuild leaves the previous one in place.
func (w *Writer) Write(rows []domain.DatasetRow) error {
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dataset dir: %w", err)
		}
	}

	tmp := w.path + ".tmp"
	if err := writeRows(tmp, rows); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, w.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace dataset: %w", err)
	}

	w.logger.Info("dataset written", "path", w.path, "rows", len(rows))
	return nil
}

func writeRows(path string, rows []domain.DatasetRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer f.Close()

	pw := parquet.NewGenericWriter[domain.DatasetRow](f)
	if len(rows) > 0 {
		if _, err := pw.Write(rows); err != nil {
			return fmt.Errorf("write dataset rows: %w", err)
		}
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("finalize dataset: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync dataset: %w", err)
	}
	return nil
}
