package analysis

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const wordsPerMinute = 250.0

var wordPattern = regexp.MustCompile(`\b\w+\b`)
var sentenceEnd = regexp.MustCompile(`[.!?]+`)
var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Result is the outcome of one analysis pass over a flattened document.
type Result struct {
	CharCount      int     `json:"charCount"`
	WordCount      int     `json:"wordCount"`
	SentenceCount  int     `json:"sentenceCount"`
	ParagraphCount int     `json:"paragraphCount"`
	ReadingTime    float64 `json:"readingTime"`
	FleschScore    float64 `json:"fleschScore"`
	GradeLevel     int     `json:"gradeLevel"`
	Score          int     `json:"score"`
	Rhythm         Rhythm  `json:"rhythm"`
	Issues         []Issue `json:"issues"`
}

// Analyze computes readability metrics and located style issues for text.
// It never fails: blank input yields a zero Result with no issues.
func Analyze(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Issues: []Issue{}}
	}

	words := wordPattern.FindAllString(text, -1)
	wordCount := len(words)
	sentenceCount := max(1, countSentences(text))

	syllables := 0
	hard3, hard4 := 0, 0
	for _, w := range words {
		n := SyllableCount(w)
		syllables += n
		if n >= 3 {
			hard3++
		}
		if n >= 4 {
			hard4++
		}
	}

	issues := detectIssues(text)
	counts := countByType(issues)

	return Result{
		CharCount:      utf8.RuneCountInString(text),
		WordCount:      wordCount,
		SentenceCount:  sentenceCount,
		ParagraphCount: countParagraphs(text),
		ReadingTime:    float64(wordCount) / wordsPerMinute,
		FleschScore:    fleschReadingEase(wordCount, sentenceCount, syllables),
		GradeLevel:     gradeLevel(countLetters(text), wordCount, sentenceCount),
		Score:          compositeScore(counts, hard3, hard4, wordCount),
		Rhythm:         measureRhythm(text),
		Issues:         issues,
	}
}

func countSentences(text string) int {
	count := 0
	for _, s := range sentenceEnd.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			count++
		}
	}
	return count
}

func countParagraphs(text string) int {
	count := 0
	for _, p := range paragraphBreak.Split(text, -1) {
		if strings.TrimSpace(p) != "" {
			count++
		}
	}
	return count
}

func countLetters(text string) int {
	n := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			n++
		}
	}
	return n
}

func fleschReadingEase(words, sentences, syllables int) float64 {
	if words == 0 {
		return 0
	}
	wps := float64(words) / float64(sentences)
	spw := float64(syllables) / float64(words)
	return clamp(206.835-1.015*wps-84.6*spw, 0, 100)
}

// gradeLevel is shaped like Coleman-Liau (letters per word), not Flesch-Kincaid.
func gradeLevel(letters, words, sentences int) int {
	lpw := float64(letters) / float64(max(1, words))
	wps := float64(words) / float64(sentences)
	return max(0, int(math.Round(4.71*lpw+0.5*wps-21.43)))
}

func compositeScore(counts map[IssueType]int, hard3, hard4, words int) int {
	score := 100.0
	score -= float64(max(0, counts[Adverb]-2) * 2)
	score -= float64(max(0, counts[Passive]-4) * 2)
	score -= float64(hard3) / float64(max(1, words)) * 15
	score -= float64(hard4) / float64(max(1, words)) * 25
	score -= float64(counts[Complex] + counts[VeryComplex])
	return int(math.Round(clamp(score, 0, 100)))
}

func countByType(issues []Issue) map[IssueType]int {
	out := make(map[IssueType]int, len(Types))
	for _, is := range issues {
		out[is.Type]++
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
