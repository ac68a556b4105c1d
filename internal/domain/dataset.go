package domain

import "time"

// DatasetRow is one row of the columnar archive snapshot: every header
// field with the enrichment block flattened into columns, plus metrics
// derived from the body. Rebuilt wholesale on each indexing run.
type DatasetRow struct {
	Identifier       string    `parquet:"identifier"`
	Title            string    `parquet:"title,optional"`
	URL              string    `parquet:"url,optional"`
	Folder           string    `parquet:"folder,optional"`
	Author           string    `parquet:"author,optional"`
	Added            time.Time `parquet:"added,optional"`
	Archived         time.Time `parquet:"archived,optional"`
	WordCount        int64     `parquet:"word_count"`
	CharacterCount   int64     `parquet:"character_count"`
	ReadingTimeMin   float64   `parquet:"reading_time_min"`
	ReadabilityGrade float64   `parquet:"readability_grade"`
	Topics           []string  `parquet:"topics,list"`
	EntitiesPerson   []string  `parquet:"entities_person,list"`
	EntitiesOrg      []string  `parquet:"entities_organization,list"`
	EntitiesLocation []string  `parquet:"entities_location,list"`
	Concepts         []string  `parquet:"concepts,list"`
	Emotion          string    `parquet:"emotion,optional"`
	Summary          string    `parquet:"summary,optional"`
	SchemaVersion    int64     `parquet:"enrichment_schema_version"`
	Path             string    `parquet:"path"`
	Snippet          string    `parquet:"snippet,optional"`
}
