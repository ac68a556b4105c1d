package normalize

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Marker sequences that show up when UTF-8 bytes are mistakenly decoded
// as Windows-1252 or Latin-1 and re-encoded. Plain prose almost never
// contains them, which is what makes the repair heuristic safe.
var mojibakeMarkers = []string{"Ã", "Â", "â€", "â„", "Ëœ"}

const maxRepairPasses = 3

// RepairMojibake undoes double-encoded UTF-8 when it can do so with
// confidence: the text must score as suspicious, every rune must map
// back to a legacy byte, the resulting bytes must form valid UTF-8, and
// the repaired text must score strictly lower. Anything else passes
// through unchanged; a wrong repair is worse than none, and passing
// through keeps the operation idempotent.
func RepairMojibake(s string) (string, bool) {
	cur := s
	changed := false
	for i := 0; i < maxRepairPasses; i++ {
		next, ok := repairOnce(cur)
		if !ok {
			break
		}
		cur = next
		changed = true
	}
	return cur, changed
}

func repairOnce(s string) (string, bool) {
	before := mojibakeScore(s)
	if before == 0 {
		return s, false
	}

	candidate, ok := reencodeLegacy(s)
	if !ok || !utf8.ValidString(candidate) {
		return s, false
	}
	if strings.ContainsRune(candidate, utf8.RuneError) {
		return s, false
	}
	if mojibakeScore(candidate) >= before {
		return s, false
	}
	return candidate, true
}

// reencodeLegacy maps each rune back to the single legacy byte it was
// mis-decoded from. Windows-1252 covers the curly-quote family
// (0x80-0x9F mapped to typographic runes); Latin-1 covers sources that
// surfaced those bytes as C1 controls instead.
func reencodeLegacy(s string) (string, bool) {
	if out, err := charmap.Windows1252.NewEncoder().String(s); err == nil {
		return out, true
	}
	if out, err := charmap.ISO8859_1.NewEncoder().String(s); err == nil {
		return out, true
	}
	return "", false
}

func mojibakeScore(s string) int {
	score := 0
	for _, marker := range mojibakeMarkers {
		score += strings.Count(s, marker)
	}
	return score
}

// CleanControl removes control characters other than tab, newline, and
// carriage return, including the C1 range that mis-decoded content
// tends to carry.
func CleanControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20 || (r >= 0x7F && r <= 0x9F):
			return -1
		default:
			return r
		}
	}, s)
}
