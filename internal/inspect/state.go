package inspect

import (
	"github.com/zyedidia/generic/mapset"
)

// MaxPageSize caps how many collection elements are shown at once.
const MaxPageSize = 32

// State is the transient explorer UI state: which nodes are expanded,
// which properties the user opted to evaluate, and where each collection
// page starts. Everything is keyed by chain UniqueID because chains are
// rebuilt every frame.
type State struct {
	expanded  mapset.Set[string]
	evaluated mapset.Set[string]
	pages     map[string]int
	pageSize  int
}

func NewState(pageSize int) *State {
	s := &State{}
	s.SetPageSize(pageSize)
	s.Clear()
	return s
}

// SetPageSize changes the page width, capped at MaxPageSize.
func (s *State) SetPageSize(n int) {
	s.pageSize = max(1, min(n, MaxPageSize))
}

func (s *State) PageSize() int { return s.pageSize }

func (s *State) IsExpanded(id string) bool { return s.expanded.Has(id) }

func (s *State) Expand(id string) { s.expanded.Put(id) }

func (s *State) Collapse(id string) { s.expanded.Remove(id) }

// Toggle flips the expansion flag and returns the new value.
func (s *State) Toggle(id string) bool {
	if s.expanded.Has(id) {
		s.expanded.Remove(id)
		return false
	}
	s.expanded.Put(id)
	return true
}

func (s *State) IsEvaluated(id string) bool { return s.evaluated.Has(id) }

// MarkEvaluated opts a property into evaluation.
func (s *State) MarkEvaluated(id string) { s.evaluated.Put(id) }

func (s *State) Forget(id string) { s.evaluated.Remove(id) }

// SetPageStart records the first element to show. The value is clamped
// lazily by Page, since the collection size is only known then.
func (s *State) SetPageStart(id string, start int) {
	s.pages[id] = start
}

// Page returns the half-open range [start, end) to show for a collection
// of n elements. The range is re-clamped against n on every call.
func (s *State) Page(id string, n int) (start, end int) {
	if n <= 0 {
		return 0, 0
	}
	width := min(s.pageSize, n)
	start = s.pages[id]
	if start > n-width {
		start = n - width
	}
	if start < 0 {
		start = 0
	}
	if _, ok := s.pages[id]; ok {
		s.pages[id] = start
	}
	return start, start + width
}

// Clear drops all expansion, evaluation and paging state.
func (s *State) Clear() {
	s.expanded = mapset.New[string]()
	s.evaluated = mapset.New[string]()
	s.pages = make(map[string]int)
}

// Counts reports the sizes of the three tables.
func (s *State) Counts() (expanded, evaluated, pages int) {
	return s.expanded.Size(), s.evaluated.Size(), len(s.pages)
}
