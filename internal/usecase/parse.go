package usecase

import (
	"fmt"
	"strings"
	"unicode"

	"readvault/internal/domain"
)

const defaultEmotion = "Analytical"

// Acronyms kept uppercase when concepts are title-cased.
var conceptAcronyms = map[string]bool{
	"AI": true, "USA": true, "US": true, "EU": true, "UK": true,
}

// parseEnrichment reads the labeled-line format back into a structured
// block. Lines between labels are ignored, except that everything after
// SUMMARY: folds into the summary so multi-line output survives. A
// response with neither a TOPICS nor a SUMMARY label is unparseable.
func parseEnrichment(response string) (domain.Enrichment, error) {
	var (
		enr        domain.Enrichment
		sawTopics  bool
		sawSummary bool
		inSummary  bool
		summary    []string
	)

	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, labelTopics):
			enr.Topics = dedup(splitList(strings.TrimPrefix(line, labelTopics)))
			sawTopics, inSummary = true, false
		case strings.HasPrefix(line, labelPeople):
			enr.Entities.Person = splitList(strings.TrimPrefix(line, labelPeople))
			inSummary = false
		case strings.HasPrefix(line, labelOrganizations):
			enr.Entities.Organization = splitList(strings.TrimPrefix(line, labelOrganizations))
			inSummary = false
		case strings.HasPrefix(line, labelLocations):
			enr.Entities.Location = splitList(strings.TrimPrefix(line, labelLocations))
			inSummary = false
		case strings.HasPrefix(line, labelConcepts):
			concepts := splitList(strings.TrimPrefix(line, labelConcepts))
			for i := range concepts {
				concepts[i] = titleizeConcept(concepts[i])
			}
			enr.Concepts = dedup(concepts)
			inSummary = false
		case strings.HasPrefix(line, labelEmotion):
			enr.Emotion = strings.TrimSpace(strings.TrimPrefix(line, labelEmotion))
			inSummary = false
		case strings.HasPrefix(line, labelSummary):
			summary = summary[:0]
			if v := strings.TrimSpace(strings.TrimPrefix(line, labelSummary)); v != "" {
				summary = append(summary, v)
			}
			sawSummary, inSummary = true, true
		case inSummary:
			summary = append(summary, line)
		}
	}

	if !sawTopics && !sawSummary {
		return domain.Enrichment{}, fmt.Errorf("%w: no recognizable labels in response", domain.ErrEnrichmentParse)
	}

	enr.Summary = strings.Join(summary, " ")
	if enr.Emotion == "" {
		enr.Emotion = defaultEmotion
	}
	return enr, nil
}

// splitList splits a comma-separated value, dropping blanks and the
// literal "None" the prompt asks for when a field is empty.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part == "" || strings.EqualFold(part, "none") {
			continue
		}
		out = append(out, part)
	}
	return out
}

func dedup(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// titleizeConcept capitalizes each word while keeping a few common
// acronyms uppercase, so "machine learning" and "Machine Learning" land
// as the same concept across runs.
func titleizeConcept(concept string) string {
	words := strings.Fields(concept)
	for i, w := range words {
		if upper := strings.ToUpper(w); conceptAcronyms[upper] {
			words[i] = upper
			continue
		}
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	runes := []rune(w)
	if len(runes) == 0 {
		return w
	}
	return string(unicode.ToUpper(runes[0])) + strings.ToLower(string(runes[1:]))
}
