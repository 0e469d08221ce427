package analysis

import (
	"regexp"
	"strings"
)

var nonLetter = regexp.MustCompile(`[^a-z]`)
var silentEnding = regexp.MustCompile(`([^aeiouy])(?:es|ed|e)$`)
var leadingY = regexp.MustCompile(`^y`)
var vowelRun = regexp.MustCompile(`[aeiouy]+`)

// SyllableCount estimates syllables with a vowel-run heuristic. It is an
// approximation and must stay stable because scores depend on it.
func SyllableCount(word string) int {
	w := nonLetter.ReplaceAllString(strings.ToLower(word), "")
	if len(w) <= 3 {
		return 1
	}
	w = silentEnding.ReplaceAllString(w, "$1")
	w = leadingY.ReplaceAllString(w, "")
	runs := len(vowelRun.FindAllString(w, -1))
	if runs == 0 {
		return 1
	}
	return runs
}
