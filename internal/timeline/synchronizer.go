package timeline

import (
	"sync"

	"github.com/airenas/go-app/pkg/goapp"
)

// Change describes what a position update changed.
// The rendering surface applies it as classes on word elements.
type Change struct {
	Time        float64  `json:"time"`
	Active      string   `json:"active,omitempty"`
	Deactivated string   `json:"deactivated,omitempty"`
	Played      []string `json:"played,omitempty"`
	Unplayed    []string `json:"unplayed,omitempty"`
	Progress    float64  `json:"progress"`
	ScrollTo    string   `json:"scrollTo,omitempty"`
}

// Synchronizer keeps active/played state for one playback session
type Synchronizer struct {
	index      *Index
	autoScroll bool

	lock   sync.Mutex
	active int
	played []bool
}

// NewSynchronizer creates synchronizer over the index
func NewSynchronizer(index *Index, autoScroll bool) *Synchronizer {
	return &Synchronizer{index: index, autoScroll: autoScroll, active: -1, played: make([]bool, index.Len())}
}

// Update recomputes state for the playback position t.
// Every call is independent of the previous t, only the diff depends on it.
func (s *Synchronizer) Update(t float64) *Change {
	s.lock.Lock()
	defer s.lock.Unlock()

	res := &Change{Time: t, Progress: s.index.progress(t)}
	active := s.index.ActiveAt(t)
	if active != s.active {
		if s.active >= 0 {
			res.Deactivated = s.index.At(s.active).ID
		}
		s.active = active
	}
	if active >= 0 {
		res.Active = s.index.At(active).ID
		if s.autoScroll {
			res.ScrollTo = res.Active
		}
	}
	for i := range s.played {
		p := s.index.IsPlayed(i, t)
		if p == s.played[i] {
			continue
		}
		s.played[i] = p
		if p {
			res.Played = append(res.Played, s.index.At(i).ID)
		} else {
			res.Unplayed = append(res.Unplayed, s.index.At(i).ID)
		}
	}
	goapp.Log.Trace().Float64("t", t).Str("active", res.Active).Int("played", len(res.Played)).
		Int("unplayed", len(res.Unplayed)).Msg("position")
	return res
}

// Active returns the active entry index or -1
func (s *Synchronizer) Active() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.active
}

// Played reports whether entry i is currently played
func (s *Synchronizer) Played(i int) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.played[i]
}
