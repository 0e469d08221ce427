package visibility

import (
	"slices"
	"sync"

	"prose_lens/internal/analysis"
	"prose_lens/internal/doc"
)

// AllCategories as the hover target shows every active category.
const AllCategories = "__all__"

// Params are the inputs of one visibility decision. An empty Hovered means
// nothing is hovered.
type Params struct {
	Hovered string
	Active  map[string]bool
	AllOn   bool
}

// ComputeVisible decides per tagged node whether its tag is shown. All-on mode
// without a hover target behaves like hovering AllCategories.
func ComputeVisible(tagged []doc.TaggedNode, hovered string, active map[string]bool, allOn bool) map[doc.NodeID]bool {
	out := make(map[doc.NodeID]bool, len(tagged))
	if hovered == "" && allOn {
		hovered = AllCategories
	}
	for _, tn := range tagged {
		switch hovered {
		case "":
			out[tn.ID] = false
		case AllCategories:
			out[tn.ID] = active[tn.Category]
		default:
			out[tn.ID] = tn.Category == hovered
		}
	}
	return out
}

func (p Params) Apply(tagged []doc.TaggedNode) map[doc.NodeID]bool {
	return ComputeVisible(tagged, p.Hovered, p.Active, p.AllOn)
}

// State is the UI state shared between the host and the renderer.
type State struct {
	mu      sync.Mutex
	hovered string
	active  map[string]bool
	allOn   bool
}

// NewState starts with the given categories active, or all of them when none
// are given.
func NewState(active ...analysis.IssueType) *State {
	if len(active) == 0 {
		active = analysis.Types
	}
	s := &State{active: map[string]bool{}}
	for _, c := range active {
		s.active[string(c)] = true
	}
	return s
}

func (s *State) Hover(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hovered = category
}

func (s *State) ClearHover() {
	s.Hover("")
}

func (s *State) SetActive(category string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.active[category] = true
		return
	}
	delete(s.active, category)
}

func (s *State) SetAllOn(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allOn = on
}

func (s *State) ActiveCategories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.active))
	for c := range s.active {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Snapshot copies the current state so callers can decide without holding
// the lock.
func (s *State) Snapshot() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := make(map[string]bool, len(s.active))
	for c, on := range s.active {
		active[c] = on
	}
	return Params{Hovered: s.hovered, Active: active, AllOn: s.allOn}
}
