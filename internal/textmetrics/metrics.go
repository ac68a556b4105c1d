// Package textmetrics computes body-derived statistics for the archive
// dataset: word count, estimated reading time, and a Flesch-Kincaid
// readability grade.
package textmetrics

import (
	"math"
	"strings"
	"unicode"
)

const wordsPerMinute = 238.0

// WordCount counts whitespace-separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadingTimeMinutes estimates reading time at an average adult pace,
// rounded to two decimals.
func ReadingTimeMinutes(words int) float64 {
	if words <= 0 {
		return 0
	}
	return math.Round(float64(words)/wordsPerMinute*100) / 100
}

// FleschKincaidGrade scores text on the US grade-level scale using
// vowel-group syllable estimation. Empty text scores 0; the result is
// clamped at 0 since negative grades carry no signal for the dashboard.
func FleschKincaidGrade(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	sentences := countSentences(text)
	if sentences == 0 {
		sentences = 1
	}
	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}
	grade := 0.39*float64(len(words))/float64(sentences) + 11.8*float64(syllables)/float64(len(words)) - 15.59
	if grade < 0 {
		grade = 0
	}
	return math.Round(grade*100) / 100
}

func countSentences(text string) int {
	n := 0
	prevEnder := false
	for _, r := range text {
		ender := r == '.' || r == '!' || r == '?'
		if ender && !prevEnder {
			n++
		}
		prevEnder = ender
	}
	return n
}

func countSyllables(word string) int {
	w := strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	if w == "" {
		return 1
	}
	count := 0
	prevVowel := false
	for _, r := range w {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}
	// Trailing silent e, as in "time" or "table".
	if strings.HasSuffix(w, "e") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}
