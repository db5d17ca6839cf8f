package timeline

import (
	"sort"

	"github.com/airenas/transcript-player/internal/domain"
)

// Entry is one word in the global timeline
type Entry = domain.Word

// Index is an immutable, start-ordered view of all transcript words
type Index struct {
	entries  []Entry
	duration float64
}

// Build creates the index. Empty documents give an empty index.
func Build(doc *domain.Document) *Index {
	words := doc.Words()
	// stable keeps document order for equal starts, the active tie-break relies on it
	sort.SliceStable(words, func(i, j int) bool { return words[i].Start < words[j].Start })
	return &Index{entries: words, duration: max(doc.TotalDuration(), maxEnd(words))}
}

func maxEnd(words []Entry) float64 {
	res := 0.0
	for _, w := range words {
		if w.End > res {
			res = w.End
		}
	}
	return res
}

// Len returns entry count
func (ix *Index) Len() int {
	return len(ix.entries)
}

// At returns entry by index
func (ix *Index) At(i int) Entry {
	return ix.entries[i]
}

// Entries returns a copy of all entries
func (ix *Index) Entries() []Entry {
	res := make([]Entry, len(ix.entries))
	copy(res, ix.entries)
	return res
}

// Duration of the indexed audio in seconds
func (ix *Index) Duration() float64 {
	return ix.duration
}

// ActiveAt returns the index of the active entry or -1.
// An entry is active iff start <= t < end; the first in order wins on overlap.
func (ix *Index) ActiveAt(t float64) int {
	// entries starting after t can't be active
	n := sort.Search(len(ix.entries), func(i int) bool { return ix.entries[i].Start > t })
	for i := 0; i < n; i++ {
		if t < ix.entries[i].End {
			return i
		}
	}
	return -1
}

// IsPlayed reports end <= t for entry i
func (ix *Index) IsPlayed(i int, t float64) bool {
	return ix.entries[i].End <= t
}

// State is a snapshot of what is active and played at some time
type State struct {
	Time     float64  `json:"time"`
	Active   string   `json:"active,omitempty"`
	Played   []string `json:"played"`
	Progress float64  `json:"progress"`
}

// StateAt answers "what is active/played at time t" without keeping state
func (ix *Index) StateAt(t float64) *State {
	res := &State{Time: t, Played: []string{}, Progress: ix.progress(t)}
	if a := ix.ActiveAt(t); a >= 0 {
		res.Active = ix.entries[a].ID
	}
	for i := range ix.entries {
		if ix.IsPlayed(i, t) {
			res.Played = append(res.Played, ix.entries[i].ID)
		}
	}
	return res
}

func (ix *Index) progress(t float64) float64 {
	if ix.duration <= 0 || t <= 0 {
		return 0
	}
	if t >= ix.duration {
		return 1
	}
	return t / ix.duration
}
