package textmetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("   \n\t "))
	assert.Equal(t, 5, WordCount("five words are counted here"))
	assert.Equal(t, 2, WordCount("  padded\n\nwords  "))
}

func TestReadingTimeMinutes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, ReadingTimeMinutes(0))
	assert.Equal(t, 0.0, ReadingTimeMinutes(-5))
	assert.InDelta(t, 1.0, ReadingTimeMinutes(238), 0.001)
	assert.InDelta(t, 4.2, ReadingTimeMinutes(1000), 0.005)
}

func TestCountSyllables(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, countSyllables("cat"))
	assert.Equal(t, 1, countSyllables("time"), "trailing silent e")
	assert.Equal(t, 3, countSyllables("beautiful"))
	assert.GreaterOrEqual(t, countSyllables("education"), 3)
	assert.Equal(t, 1, countSyllables("1941"), "non-letter tokens count as one")
}

func TestFleschKincaidGrade(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, FleschKincaidGrade(""))

	simple := "The cat sat on the mat. The dog ran to the barn. We saw it all."
	complex := "Institutional sustainability considerations necessitate comprehensive organizational transformation. " +
		"Interdisciplinary collaboration facilitates unprecedented technological advancement."

	sg := FleschKincaidGrade(simple)
	cg := FleschKincaidGrade(complex)
	assert.Less(t, sg, 6.0, "short declarative sentences read at primary level")
	assert.Greater(t, cg, 12.0, "polysyllabic prose reads at college level")
	assert.Greater(t, cg, sg)
}

func TestFleschKincaidGradeWithoutSentencePunctuation(t *testing.T) {
	t.Parallel()

	// A run-on with no terminator is treated as a single sentence.
	g := FleschKincaidGrade("words without any sentence punctuation at all")
	assert.Greater(t, g, 0.0)
}
