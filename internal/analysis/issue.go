package analysis

// IssueType is the category of a located style issue.
type IssueType string

const (
	Adverb      IssueType = "adverb"
	Passive     IssueType = "passive"
	Complex     IssueType = "complex"
	VeryComplex IssueType = "veryComplex"
	HardWord    IssueType = "hardWord"
	Qualifier   IssueType = "qualifier"
)

// Types lists every category in display order.
var Types = []IssueType{Adverb, Passive, Complex, VeryComplex, HardWord, Qualifier}

func (t IssueType) Valid() bool {
	_, ok := Categories[t]
	return ok
}

func (t IssueType) Label() string {
	return Categories[t].Label
}

// Issue is a half-open byte range [Index, Index+Length) into the flattened
// string it was detected in. Offsets go stale on the next edit.
type Issue struct {
	Type       IssueType `json:"type"`
	Index      int       `json:"index"`
	Length     int       `json:"length"`
	Text       string    `json:"text"`
	Suggestion string    `json:"suggestion,omitempty"`
}

func (i Issue) End() int {
	return i.Index + i.Length
}

// SameIssues reports whether a and b locate the same issues in the same
// order, comparing category, offset and length only.
func SameIssues(a, b []Issue) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || a[i].Index != b[i].Index || a[i].Length != b[i].Length {
			return false
		}
	}
	return true
}

// Category is the fixed display entry for an issue type.
type Category struct {
	ColorKey   string
	Color      string
	Label      string
	Suggestion string
}

var Categories = map[IssueType]Category{
	Adverb: {
		ColorKey:   "blue",
		Color:      "#4f8fe6",
		Label:      "Try a stronger verb",
		Suggestion: "Remove the adverb or pick a verb that carries its meaning.",
	},
	Passive: {
		ColorKey:   "green",
		Color:      "#3fae6a",
		Label:      "Passive voice",
		Suggestion: "Rewrite in active voice so the subject acts.",
	},
	Complex: {
		ColorKey:   "yellow",
		Color:      "#e6c34f",
		Label:      "Hard to read",
		Suggestion: "Shorten or split this sentence.",
	},
	VeryComplex: {
		ColorKey:   "red",
		Color:      "#e0565b",
		Label:      "Very hard to read",
		Suggestion: "Split this sentence into several shorter ones.",
	},
	HardWord: {
		ColorKey:   "purple",
		Color:      "#9b6ee0",
		Label:      "Simpler alternative",
		Suggestion: "Use a simpler word with fewer syllables.",
	},
	Qualifier: {
		ColorKey:   "orange",
		Color:      "#ec8b3c",
		Label:      "Weak qualifier",
		Suggestion: "Cut the qualifier and state it with confidence.",
	},
}
