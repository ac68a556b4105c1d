// Package store keeps one markdown document per archive item in a flat
// directory. Files are the durable record: writes go through a
// temp-file rename, and re-ingesting an item merges into the existing
// file instead of clobbering what enrichment already added.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"readvault/internal/domain"
	"readvault/internal/ports"
)

const maxTitleRunes = 80

type FileStore struct {
	dir    string
	logger *slog.Logger

	mu    sync.Mutex
	paths map[string]string // identifier -> path
}

var _ ports.DocumentStore = (*FileStore)(nil)

// Open creates the store directory if needed and indexes the documents
// already in it. Files that fail to parse are skipped with a warning so
// one damaged file cannot block a run.
func Open(dir string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create document store dir: %w", err)
	}
	s := &FileStore{dir: dir, logger: logger, paths: make(map[string]string)}
	if err := s.scan(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) scan() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read document store dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		doc, err := s.Load(path)
		if err != nil {
			s.logger.Warn("skipping unreadable document", "path", path, "error", err)
			continue
		}
		s.paths[doc.Header.ID] = path
	}
	return nil
}

// Write stores fetched content for an item. An existing document keeps
// its enrichment block and any extra header keys; incoming metadata
// only overwrites fields it actually carries. A new document gets a
// date-and-title filename.
func (s *FileStore) Write(item domain.ArchiveItem, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	incoming := headerFromItem(item)
	if path, ok := s.paths[item.ID]; ok {
		doc, err := s.Load(path)
		if err != nil {
			return fmt.Errorf("load existing document: %w", err)
		}
		doc.Header.MergeIngest(incoming)
		doc.Body = body
		return s.save(path, doc)
	}

	path := s.uniquePath(fileNameFor(item))
	if err := s.save(path, domain.Document{Header: incoming, Body: body}); err != nil {
		return err
	}
	s.paths[item.ID] = path
	return nil
}

// MergeEnrichment replaces the enrichment block of an existing
// document, leaving body and ingest metadata untouched.
func (s *FileStore) MergeEnrichment(id string, enr domain.Enrichment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, ok := s.paths[id]
	if !ok {
		return fmt.Errorf("%w: document for %s", domain.ErrNotFound, id)
	}
	doc, err := s.Load(path)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	doc.Header.SetEnrichment(enr)
	return s.save(path, doc)
}

func (s *FileStore) PathFor(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, ok := s.paths[id]
	return path, ok
}

// List returns the indexed document paths in stable order.
func (s *FileStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.paths))
	for _, p := range s.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func (s *FileStore) Load(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read document: %w", err)
	}
	doc, err := Decode(data)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

func (s *FileStore) save(path string, doc domain.Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

func (s *FileStore) uniquePath(name string) string {
	base := strings.TrimSuffix(name, ".md")
	path := filepath.Join(s.dir, name)
	for n := 2; ; n++ {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return path
		}
		path = filepath.Join(s.dir, fmt.Sprintf("%s (%d).md", base, n))
	}
}

func headerFromItem(it domain.ArchiveItem) domain.Header {
	return domain.Header{
		ID:        it.ID,
		Title:     it.Title,
		URL:       it.URL,
		Folder:    it.Folder,
		Author:    it.Author,
		Added:     it.SavedAt,
		Archived:  it.ArchivedAt,
		WordCount: it.WordCount,
	}
}

// fileNameFor builds "YYYY-MM-DD – title.md" from the item's archive
// date, falling back to the save date and then to today.
func fileNameFor(item domain.ArchiveItem) string {
	date := item.ArchivedAt
	if date.IsZero() {
		date = item.SavedAt
	}
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return date.Format("2006-01-02") + " – " + sanitizeTitle(item.Title) + ".md"
}

// sanitizeTitle removes characters that are unsafe in filenames and
// caps the length so titles pasted from page markup stay manageable.
func sanitizeTitle(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(`<>:"/\|?*`, r):
			return -1
		case r < 0x20:
			return ' '
		default:
			return r
		}
	}, title)
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	if runes := []rune(cleaned); len(runes) > maxTitleRunes {
		cleaned = strings.TrimSpace(string(runes[:maxTitleRunes]))
	}
	if cleaned == "" {
		return "untitled"
	}
	return cleaned
}
