package analysis

import (
	"gonum.org/v1/gonum/stat"
)

const (
	monotoneSD           = 4.0
	monotoneMinSentences = 3
)

// Rhythm describes sentence-length variability. It is informational and
// never feeds the composite score.
type Rhythm struct {
	MeanSentenceLength float64 `json:"meanSentenceLength"`
	SentenceLengthSD   float64 `json:"sentenceLengthSD"`
	Monotone           bool    `json:"monotone"`
}

func measureRhythm(text string) Rhythm {
	lengths := make([]float64, 0)
	for _, s := range sentenceEnd.Split(text, -1) {
		if n := len(wordPattern.FindAllStringIndex(s, -1)); n > 0 {
			lengths = append(lengths, float64(n))
		}
	}
	if len(lengths) == 0 {
		return Rhythm{}
	}
	if len(lengths) == 1 {
		return Rhythm{MeanSentenceLength: lengths[0]}
	}

	mean, sd := stat.PopMeanStdDev(lengths, nil)
	return Rhythm{
		MeanSentenceLength: mean,
		SentenceLengthSD:   sd,
		Monotone:           len(lengths) >= monotoneMinSentences && sd < monotoneSD,
	}
}
