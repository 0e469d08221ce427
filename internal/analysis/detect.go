package analysis

import (
	"regexp"
	"strings"
)

const (
	complexSentenceWords     = 25
	veryComplexSentenceWords = 35
	hardWordSyllables        = 4
)

var adverbPattern = regexp.MustCompile(`(?i)\b\w+ly\b`)
var passivePattern = regexp.MustCompile(`(?i)\b(?:is|are|was|were|be|been|being)\s+\w+(?:ed|en)\b`)
var sentencePiece = regexp.MustCompile(`[^.!?]+[.!?]*`)

var adverbExceptions = map[string]struct{}{
	"family": {},
	"only":   {},
	"july":   {},
	"reply":  {},
	"supply": {},
	"apply":  {},
	"belly":  {},
	"jelly":  {},
	"rally":  {},
	"ally":   {},
}

var qualifierPhrases = []string{
	"I think", "we think", "I believe", "we believe",
	"maybe", "perhaps", "possibly", "probably",
	"I guess", "we guess", "kind of", "sort of",
	"a bit", "a little", "really", "extremely", "incredibly",
}

var qualifierPatterns = compileQualifiers(qualifierPhrases)

func compileQualifiers(phrases []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(p)+`\b`))
	}
	return out
}

func detectIssues(text string) []Issue {
	issues := make([]Issue, 0)
	issues = append(issues, findAdverbs(text)...)
	issues = append(issues, findPassive(text)...)
	issues = append(issues, findLongSentences(text)...)
	issues = append(issues, findHardWords(text)...)
	issues = append(issues, findQualifiers(text)...)
	return issues
}

func newIssue(t IssueType, text string, start, end int) Issue {
	return Issue{
		Type:       t,
		Index:      start,
		Length:     end - start,
		Text:       text[start:end],
		Suggestion: Categories[t].Suggestion,
	}
}

func findAdverbs(text string) []Issue {
	var out []Issue
	for _, m := range adverbPattern.FindAllStringIndex(text, -1) {
		if _, skip := adverbExceptions[strings.ToLower(text[m[0]:m[1]])]; skip {
			continue
		}
		out = append(out, newIssue(Adverb, text, m[0], m[1]))
	}
	return out
}

func findPassive(text string) []Issue {
	var out []Issue
	for _, m := range passivePattern.FindAllStringIndex(text, -1) {
		out = append(out, newIssue(Passive, text, m[0], m[1]))
	}
	return out
}

// findLongSentences never lets a sentence cross a line boundary.
func findLongSentences(text string) []Issue {
	var out []Issue
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		for _, m := range sentencePiece.FindAllStringIndex(line, -1) {
			piece := line[m[0]:m[1]]
			trimmed := strings.TrimSpace(piece)
			if trimmed == "" {
				continue
			}
			words := len(wordPattern.FindAllStringIndex(trimmed, -1))
			var kind IssueType
			switch {
			case words > veryComplexSentenceWords:
				kind = VeryComplex
			case words > complexSentenceWords:
				kind = Complex
			default:
				continue
			}
			start := offset + m[0] + strings.Index(piece, trimmed)
			out = append(out, newIssue(kind, text, start, start+len(trimmed)))
		}
		offset += len(line) + 1
	}
	return out
}

func findHardWords(text string) []Issue {
	var out []Issue
	for _, m := range wordPattern.FindAllStringIndex(text, -1) {
		if SyllableCount(text[m[0]:m[1]]) >= hardWordSyllables {
			out = append(out, newIssue(HardWord, text, m[0], m[1]))
		}
	}
	return out
}

func findQualifiers(text string) []Issue {
	var out []Issue
	for _, re := range qualifierPatterns {
		for _, m := range re.FindAllStringIndex(text, -1) {
			out = append(out, newIssue(Qualifier, text, m[0], m[1]))
		}
	}
	return out
}
