// Package ledger persists per-identifier ingestion progress as an
// append-only JSONL file. Every recorded outcome is one line, synced to
// disk before the next item starts, so a crash mid-run never loses an
// already-recorded success. On open the file is replayed; the last
// state per identifier wins, except that fetched is terminal.
package ledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"readvault/internal/domain"
	"readvault/internal/ports"
)

const maxErrorLen = 500

// FileLedger implements ports.ProgressLedger on a single JSONL file.
type FileLedger struct {
	path    string
	f       *os.File
	records map[string]domain.ProgressRecord
	logger  *slog.Logger
}

var _ ports.ProgressLedger = (*FileLedger)(nil)

// Open loads (or creates) the ledger at path and leaves it ready for
// appending.
func Open(path string, logger *slog.Logger) (*FileLedger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	l := &FileLedger{
		path:    path,
		f:       f,
		records: make(map[string]domain.ProgressRecord),
		logger:  logger,
	}
	if err := l.replay(); err != nil {
		f.Close()
		return nil, err
	}
	return l, nil
}

func (l *FileLedger) replay() error {
	scanner := bufio.NewScanner(l.f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	malformed := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec domain.ProgressRecord
		if err := json.Unmarshal(line, &rec); err != nil || rec.ID == "" {
			malformed++
			continue
		}
		l.apply(rec)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("replay ledger: %w", err)
	}
	if malformed > 0 {
		l.logger.Warn("ignored malformed ledger lines", "count", malformed, "path", l.path)
	}
	return nil
}

// apply folds one replayed record into memory, honoring the fetched
// monotonicity rule.
func (l *FileLedger) apply(rec domain.ProgressRecord) {
	if cur, ok := l.records[rec.ID]; ok && cur.Status == domain.StatusFetched && rec.Status != domain.StatusFetched {
		return
	}
	l.records[rec.ID] = rec
}

// RecordAttempt appends one outcome for id and syncs it to disk. Once
// an identifier is fetched, later non-fetched outcomes are ignored.
func (l *FileLedger) RecordAttempt(id string, status domain.FetchStatus, attemptErr error) error {
	rec, ok := l.records[id]
	if ok && rec.Status == domain.StatusFetched && status != domain.StatusFetched {
		return nil
	}
	if !ok {
		rec = domain.ProgressRecord{ID: id}
	}
	rec.Status = status
	rec.Attempts++
	rec.LastAttempt = time.Now().UTC()
	rec.LastError = ""
	if attemptErr != nil {
		rec.LastError = truncate(attemptErr.Error(), maxErrorLen)
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode ledger record: %w", err)
	}
	if _, err := l.f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append ledger record: %w", err)
	}
	if err := l.f.Sync(); err != nil {
		return fmt.Errorf("sync ledger: %w", err)
	}

	l.records[id] = rec
	return nil
}

// IsFetched reports whether id has been durably ingested.
func (l *FileLedger) IsFetched(id string) bool {
	return l.records[id].Status == domain.StatusFetched
}

// Pending filters items down to the ones not yet fetched, preserving
// manifest order. Failed items stay pending so the next run retries
// them.
func (l *FileLedger) Pending(items []domain.ArchiveItem) []domain.ArchiveItem {
	pending := make([]domain.ArchiveItem, 0, len(items))
	for _, item := range items {
		if !l.IsFetched(item.ID) {
			pending = append(pending, item)
		}
	}
	return pending
}

// Records returns a snapshot of all known progress records.
func (l *FileLedger) Records() map[string]domain.ProgressRecord {
	out := make(map[string]domain.ProgressRecord, len(l.records))
	for id, rec := range l.records {
		out[id] = rec
	}
	return out
}

// Remove drops the given identifiers and compacts the ledger file,
// keeping a .bak copy of the previous contents. Used by remediation
// when documents vanish from the store; a removed identifier becomes
// pending again.
func (l *FileLedger) Remove(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	prev, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("read ledger for backup: %w", err)
	}
	if err := os.WriteFile(l.path+".bak", prev, 0o644); err != nil {
		return fmt.Errorf("write ledger backup: %w", err)
	}

	for _, id := range ids {
		delete(l.records, id)
	}

	remaining := make([]domain.ProgressRecord, 0, len(l.records))
	for _, rec := range l.records {
		remaining = append(remaining, rec)
	}
	sort.Slice(remaining, func(i, j int) bool { return remaining[i].ID < remaining[j].ID })

	tmp := l.path + ".tmp"
	tf, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create compacted ledger: %w", err)
	}
	w := bufio.NewWriter(tf)
	for _, rec := range remaining {
		line, err := json.Marshal(rec)
		if err != nil {
			tf.Close()
			return fmt.Errorf("encode ledger record: %w", err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			tf.Close()
			return fmt.Errorf("write compacted ledger: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tf.Close()
		return fmt.Errorf("flush compacted ledger: %w", err)
	}
	if err := tf.Sync(); err != nil {
		tf.Close()
		return fmt.Errorf("sync compacted ledger: %w", err)
	}
	if err := tf.Close(); err != nil {
		return fmt.Errorf("close compacted ledger: %w", err)
	}

	if err := l.f.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("swap compacted ledger: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reopen ledger: %w", err)
	}
	l.f = f
	return nil
}

// Close releases the underlying file handle.
func (l *FileLedger) Close() error {
	return l.f.Close()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
