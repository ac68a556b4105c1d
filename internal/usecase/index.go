package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"readvault/internal/domain"
	"readvault/internal/ports"
	"readvault/internal/textmetrics"
)

const snippetRunes = 500

// Indexer rebuilds the columnar dataset from every document on disk.
// The rebuild is all-or-nothing: rows accumulate in memory and the
// writer swaps the dataset in one rename at the end.
type Indexer struct {
	store  ports.DocumentStore
	writer ports.DatasetWriter
	logger *slog.Logger
}

func NewIndexer(store ports.DocumentStore, writer ports.DatasetWriter, logger *slog.Logger) *Indexer {
	return &Indexer{store: store, writer: writer, logger: logger}
}

func (ix *Indexer) Run(ctx context.Context) (domain.IndexSummary, error) {
	paths, err := ix.store.List()
	if err != nil {
		return domain.IndexSummary{}, fmt.Errorf("list documents: %w", err)
	}

	var summary domain.IndexSummary
	rows := make([]domain.DatasetRow, 0, len(paths))
	for _, path := range paths {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		doc, err := ix.store.Load(path)
		if err != nil {
			ix.logger.Warn("skipping unparsable document", "path", path, "error", err)
			summary.Skipped++
			continue
		}
		rows = append(rows, buildRow(doc, path))
		summary.Indexed++
	}

	if err := ix.writer.Write(rows); err != nil {
		return summary, fmt.Errorf("write dataset: %w", err)
	}

	ix.logger.Info("index rebuilt", "indexed", summary.Indexed, "skipped", summary.Skipped)
	return summary, nil
}

func buildRow(doc domain.Document, path string) domain.DatasetRow {
	words := doc.Header.WordCount
	if words == 0 {
		words = textmetrics.WordCount(doc.Body)
	}

	row := domain.DatasetRow{
		Identifier:     doc.Header.ID,
		Title:          doc.Header.Title,
		URL:            doc.Header.URL,
		Folder:         doc.Header.Folder,
		Author:         doc.Header.Author,
		Added:          doc.Header.Added,
		Archived:       doc.Header.Archived,
		WordCount:      int64(words),
		CharacterCount: int64(utf8.RuneCountInString(doc.Body)),
		ReadingTimeMin: textmetrics.ReadingTimeMinutes(words),
		Path:           path,
		Snippet:        truncateRunes(doc.Body, snippetRunes),
	}
	// The grade formula is meaningless on tiny texts.
	if words > 50 {
		row.ReadabilityGrade = textmetrics.FleschKincaidGrade(doc.Body)
	}

	if enr := doc.Header.Enrichment; enr != nil {
		row.Topics = enr.Topics
		row.EntitiesPerson = enr.Entities.Person
		row.EntitiesOrg = enr.Entities.Organization
		row.EntitiesLocation = enr.Entities.Location
		row.Concepts = enr.Concepts
		row.Emotion = enr.Emotion
		row.Summary = enr.Summary
		row.SchemaVersion = int64(enr.SchemaVersion)
	}
	return row
}
