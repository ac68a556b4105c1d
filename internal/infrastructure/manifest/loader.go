// Package manifest parses the tabular export produced by the upstream
// service's export feature. The export is the only complete enumeration
// of archive identifiers; the listing API caps out at a fixed window.
package manifest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"readvault/internal/domain"
	"readvault/internal/ports"
)

const (
	colID          = "id"
	colTitle       = "title"
	colURL         = "url"
	colDescription = "description"
	colAuthor      = "author"
	colWords       = "words"
	colFolder      = "folder"
	colArchived    = "archived"
	colSavedAt     = "saved time"
	colPublishedAt = "published time"
	colArchivedAt  = "archived time"
)

// Timestamp layouts observed across export versions, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// Loader reads ArchiveItems from a CSV manifest file.
type Loader struct {
	path   string
	logger *slog.Logger
}

var _ ports.ManifestLoader = (*Loader)(nil)

// NewLoader returns a Loader for the given manifest path.
func NewLoader(path string, logger *slog.Logger) *Loader {
	return &Loader{path: path, logger: logger}
}

// Load parses the manifest into the full item set, deduplicated by
// identifier with the last occurrence winning. It fails only on
// structural problems: a missing file, an unreadable header row, or
// absent required columns.
func (l *Loader) Load() ([]domain.ArchiveItem, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: no header row: %v", domain.ErrManifestFormat, err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colID, colFolder} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrManifestFormat, required)
		}
	}

	var items []domain.ArchiveItem
	seen := make(map[string]int)
	line := 1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			l.logger.Warn("skipping unreadable manifest row", "line", line, "error", err)
			continue
		}

		field := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		id := field(colID)
		if id == "" {
			l.logger.Warn("skipping manifest row without identifier", "line", line)
			continue
		}

		item := domain.ArchiveItem{
			ID:          id,
			Title:       field(colTitle),
			URL:         field(colURL),
			Description: field(colDescription),
			Author:      field(colAuthor),
			Folder:      field(colFolder),
			WordCount:   parseInt(field(colWords)),
			Archived:    isTruthy(field(colArchived)),
			SavedAt:     parseTime(field(colSavedAt)),
			PublishedAt: parseTime(field(colPublishedAt)),
			ArchivedAt:  parseTime(field(colArchivedAt)),
		}

		if at, dup := seen[id]; dup {
			items[at] = item
		} else {
			seen[id] = len(items)
			items = append(items, item)
		}
	}

	l.logger.Info("manifest loaded", "path", l.path, "items", len(items))
	return items, nil
}

func parseInt(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func isTruthy(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func parseTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
