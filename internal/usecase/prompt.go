package usecase

import "strings"

// Labels the model is instructed to emit, one per line. The parser keys
// off these exact prefixes.
const (
	labelTopics        = "TOPICS:"
	labelPeople        = "PEOPLE:"
	labelOrganizations = "ORGANIZATIONS:"
	labelLocations     = "LOCATIONS:"
	labelConcepts      = "CONCEPTS:"
	labelEmotion       = "EMOTION:"
	labelSummary       = "SUMMARY:"
)

const promptTemplate = `Analyze the following article text deeply. I need structured insights for a personal knowledge base.

Provide the following output fields exactly as formatted below:

TOPICS: [List 3-5 high-level themes/topics, comma-separated]
PEOPLE: [List key people mentioned, comma-separated. If none, write None]
ORGANIZATIONS: [List key companies/orgs mentioned, comma-separated. If none, write None]
LOCATIONS: [List notable cities/countries/regions/landmarks mentioned, comma-separated. If none, write None]
CONCEPTS: [List 3-8 important abstract concepts or products (e.g., "machine learning", "supply chains"), comma-separated. If none, write None]
EMOTION: [One word describing the emotional tone, e.g., Inspiring, Alarming, Analytical, Nostalgic, Controversial]
SUMMARY: [A 2-3 sentence TL;DR summary capturing the core argument and conclusion. Max 80 words.]

`

const strictFormatReminder = `The previous answer did not follow the required format. Answer again using ONLY the labeled lines requested below, each starting with the label in capitals followed by a colon. Do not add any other text.

`

// buildEnrichmentPrompt assembles the instruction block, the title, and
// the leading portion of the article body. Truncation keeps the prompt
// inside the model's useful context; the opening of an article carries
// most of the signal for topics and entities.
func buildEnrichmentPrompt(title, body string, maxChars int, strict bool) string {
	var b strings.Builder
	if strict {
		b.WriteString(strictFormatReminder)
	}
	b.WriteString(promptTemplate)
	if title != "" {
		b.WriteString("Title: ")
		b.WriteString(title)
		b.WriteString("\n\n")
	}
	b.WriteString("Article Text:\n")
	b.WriteString(truncateRunes(body, maxChars))
	return b.String()
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
