package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"readvault/internal/domain"
	"readvault/internal/ports"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeManifest struct {
	items []domain.ArchiveItem
	err   error
}

func (f *fakeManifest) Load() ([]domain.ArchiveItem, error) { return f.items, f.err }

type fakeLedger struct {
	records map[string]domain.ProgressRecord
	removed []string
}

var _ ports.ProgressLedger = (*fakeLedger)(nil)

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: make(map[string]domain.ProgressRecord)}
}

func (f *fakeLedger) RecordAttempt(id string, status domain.FetchStatus, attemptErr error) error {
	rec := f.records[id]
	if rec.Status == domain.StatusFetched {
		return nil
	}
	rec.ID = id
	rec.Status = status
	rec.Attempts++
	rec.LastError = ""
	if attemptErr != nil {
		rec.LastError = attemptErr.Error()
	}
	f.records[id] = rec
	return nil
}

func (f *fakeLedger) IsFetched(id string) bool {
	return f.records[id].Status == domain.StatusFetched
}

func (f *fakeLedger) Pending(items []domain.ArchiveItem) []domain.ArchiveItem {
	var out []domain.ArchiveItem
	for _, item := range items {
		if !f.IsFetched(item.ID) {
			out = append(out, item)
		}
	}
	return out
}

func (f *fakeLedger) Records() map[string]domain.ProgressRecord {
	out := make(map[string]domain.ProgressRecord, len(f.records))
	for id, rec := range f.records {
		out[id] = rec
	}
	return out
}

func (f *fakeLedger) Remove(ids []string) error {
	for _, id := range ids {
		delete(f.records, id)
		f.removed = append(f.removed, id)
	}
	return nil
}

func (f *fakeLedger) Close() error { return nil }

type fetchResult struct {
	html string
	err  error
}

type fakeFetcher struct {
	responses map[string]fetchResult
	calls     []string
	onFetch   func(id string)
}

var _ ports.ContentFetcher = (*fakeFetcher)(nil)

func (f *fakeFetcher) Fetch(ctx context.Context, id string) (domain.RawContent, error) {
	f.calls = append(f.calls, id)
	if f.onFetch != nil {
		f.onFetch(id)
	}
	if err := ctx.Err(); err != nil {
		return domain.RawContent{}, err
	}
	res := f.responses[id]
	if res.err != nil {
		return domain.RawContent{}, res.err
	}
	return domain.RawContent{ID: id, HTML: res.html}, nil
}

// passNormalizer returns fetched content as-is so tests can assert on
// exact bodies.
type passNormalizer struct{}

func (passNormalizer) Normalize(raw domain.RawContent) string { return raw.HTML }

type fakeStore struct {
	mu       sync.Mutex
	docs     map[string]*domain.Document
	writeErr error
	mergeErr error
	loadErrs map[string]error
}

var _ ports.DocumentStore = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]*domain.Document)}
}

func (f *fakeStore) add(doc domain.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[doc.Header.ID] = &doc
}

func (f *fakeStore) Write(item domain.ArchiveItem, body string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	incoming := domain.Header{
		ID:        item.ID,
		Title:     item.Title,
		URL:       item.URL,
		Folder:    item.Folder,
		Author:    item.Author,
		Added:     item.SavedAt,
		Archived:  item.ArchivedAt,
		WordCount: item.WordCount,
	}
	if doc, ok := f.docs[item.ID]; ok {
		doc.Header.MergeIngest(incoming)
		doc.Body = body
		return nil
	}
	f.docs[item.ID] = &domain.Document{Header: incoming, Body: body}
	return nil
}

func (f *fakeStore) MergeEnrichment(id string, enr domain.Enrichment) error {
	if f.mergeErr != nil {
		return f.mergeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		return fmt.Errorf("%w: document for %s", domain.ErrNotFound, id)
	}
	doc.Header.SetEnrichment(enr)
	return nil
}

func (f *fakeStore) PathFor(id string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return "", false
	}
	return id + ".md", true
}

func (f *fakeStore) List() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.docs))
	for id := range f.docs {
		out = append(out, id+".md")
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeStore) Load(path string) (domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadErrs[path]; err != nil {
		return domain.Document{}, err
	}
	doc, ok := f.docs[strings.TrimSuffix(path, ".md")]
	if !ok {
		return domain.Document{}, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	return *doc, nil
}

func (f *fakeStore) get(id string) domain.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.docs[id]
}

type fakeInference struct {
	mu      sync.Mutex
	fn      func(ctx context.Context, prompt string) (string, error)
	calls   int
	prompts []string
}

var _ ports.InferenceClient = (*fakeInference)(nil)

func (f *fakeInference) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	fn := f.fn
	f.mu.Unlock()
	if fn == nil {
		return "", fmt.Errorf("no response scripted")
	}
	return fn(ctx, prompt)
}

func (f *fakeInference) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeDatasetWriter struct {
	rows   []domain.DatasetRow
	writes int
	err    error
}

var _ ports.DatasetWriter = (*fakeDatasetWriter)(nil)

func (f *fakeDatasetWriter) Write(rows []domain.DatasetRow) error {
	f.writes++
	f.rows = rows
	return f.err
}
