package domain

import "time"

// ArchiveItem is one row of the operator-supplied manifest export.
// Items are immutable after loading; the manifest enumerates every
// identifier the archive is expected to contain, including the ones a
// capped listing endpoint would never return.
type ArchiveItem struct {
	ID          string
	Title       string
	URL         string
	Description string
	Author      string
	Folder      string
	WordCount   int
	Archived    bool
	SavedAt     time.Time
	PublishedAt time.Time
	ArchivedAt  time.Time
}

// RawContent is the upstream response for a single identifier before
// normalization.
type RawContent struct {
	ID   string
	HTML string
}

// Entities groups named entities by category, kept in model output order.
type Entities struct {
	Person       []string `yaml:"person,omitempty"`
	Organization []string `yaml:"organization,omitempty"`
	Location     []string `yaml:"location,omitempty"`
}

// Enrichment is the AI-derived block of a Document header. SchemaVersion
// gates reprocessing: a block with a version below the configured one
// counts as absent.
type Enrichment struct {
	Topics        []string `yaml:"topics,omitempty"`
	Entities      Entities `yaml:"entities,omitempty"`
	Concepts      []string `yaml:"concepts,omitempty"`
	Emotion       string   `yaml:"emotion,omitempty"`
	Summary       string   `yaml:"summary,omitempty"`
	SchemaVersion int      `yaml:"schema_version"`
}

// Header is the structured metadata at the top of a stored Document.
// Keys the pipeline does not recognize survive a decode/encode round
// trip through Extra, so merge-on-write never drops fields added by the
// operator or by other tools.
type Header struct {
	ID         string         `yaml:"identifier"`
	Title      string         `yaml:"title,omitempty"`
	URL        string         `yaml:"url,omitempty"`
	Folder     string         `yaml:"folder,omitempty"`
	Author     string         `yaml:"author,omitempty"`
	Added      time.Time      `yaml:"added,omitempty"`
	Archived   time.Time      `yaml:"archived,omitempty"`
	WordCount  int            `yaml:"word_count,omitempty"`
	Enrichment *Enrichment    `yaml:"enrichment,omitempty"`
	Extra      map[string]any `yaml:",inline"`
}

// Document is the canonical stored unit: structured header plus
// normalized body text. The document store is the system of record; the
// dataset is derived from it and disposable.
type Document struct {
	Header Header
	Body   string
}

// MergeIngest folds freshly ingested metadata into the header. Only
// supplied (non-zero) fields are written; the enrichment block and any
// unrecognized keys are never touched, so re-ingesting an enriched
// document cannot erase enrichment results.
func (h *Header) MergeIngest(in Header) {
	if in.ID != "" {
		h.ID = in.ID
	}
	if in.Title != "" {
		h.Title = in.Title
	}
	if in.URL != "" {
		h.URL = in.URL
	}
	if in.Folder != "" {
		h.Folder = in.Folder
	}
	if in.Author != "" {
		h.Author = in.Author
	}
	if !in.Added.IsZero() {
		h.Added = in.Added
	}
	if !in.Archived.IsZero() {
		h.Archived = in.Archived
	}
	if in.WordCount > 0 {
		h.WordCount = in.WordCount
	}
}

// SetEnrichment replaces the enrichment block and nothing else.
func (h *Header) SetEnrichment(e Enrichment) {
	h.Enrichment = &e
}
