package dataset

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readvault/internal/domain"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func sampleRows() []domain.DatasetRow {
	return []domain.DatasetRow{
		{
			Identifier:       "1001",
			Title:            "A Study in Scarlet",
			URL:              "https://example.org/scarlet",
			Folder:           "Archive",
			Author:           "Doyle",
			Added:            time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			Archived:         time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC),
			WordCount:        4300,
			CharacterCount:   25800,
			ReadingTimeMin:   18.07,
			ReadabilityGrade: 9.2,
			Topics:           []string{"Detective Fiction", "Victorian London"},
			EntitiesPerson:   []string{"Sherlock Holmes"},
			Concepts:         []string{"Deduction"},
			Emotion:          "Suspenseful",
			Summary:          "A study of deduction.",
			SchemaVersion:    2,
			Path:             "2024-03-05 – A Study in Scarlet.md",
			Snippet:          "Chapter one.",
		},
		{
			Identifier: "1002",
			Title:      "Untitled Note",
			WordCount:  12,
			Path:       "note.md",
		},
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.parquet")
	w := NewWriter(path, discard())

	rows := sampleRows()
	require.NoError(t, w.Write(rows))

	got, err := parquet.ReadFile[domain.DatasetRow](path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "1001", got[0].Identifier)
	assert.Equal(t, rows[0].Topics, got[0].Topics)
	assert.Equal(t, rows[0].EntitiesPerson, got[0].EntitiesPerson)
	assert.Equal(t, rows[0].Summary, got[0].Summary)
	assert.Equal(t, int64(4300), got[0].WordCount)
	assert.InDelta(t, 18.07, got[0].ReadingTimeMin, 0.001)
	assert.WithinDuration(t, rows[0].Added, got[0].Added, 0)
	assert.WithinDuration(t, rows[0].Archived, got[0].Archived, 0)

	assert.Equal(t, "1002", got[1].Identifier)
	assert.Empty(t, got[1].Topics)
	assert.Equal(t, int64(0), got[1].SchemaVersion)
}

func TestWriteReplacesPreviousDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.parquet")
	w := NewWriter(path, discard())

	require.NoError(t, w.Write(sampleRows()))
	require.NoError(t, w.Write(sampleRows()[:1]))

	got, err := parquet.ReadFile[domain.DatasetRow](path)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteEmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.parquet")
	w := NewWriter(path, discard())

	require.NoError(t, w.Write(nil))

	got, err := parquet.ReadFile[domain.DatasetRow](path)
	require.NoError(t, err)
	assert.Empty(t, got)
}
