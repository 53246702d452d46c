package leads

import "sort"

// SelectionSet holds the lead ids picked for a bulk action. Ids stay
// selected when the filter hides them.
type SelectionSet struct {
	ids map[string]struct{}
}

// NewSelectionSet returns an empty selection.
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{ids: make(map[string]struct{})}
}

// Toggle adds id when absent and removes it when present.
func (s *SelectionSet) Toggle(id string) {
	s.init()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// SetAll replaces the selection with ids.
func (s *SelectionSet) SetAll(ids []string) {
	s.ids = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// Clear empties the selection.
func (s *SelectionSet) Clear() {
	s.ids = make(map[string]struct{})
}

// Contains reports whether id is selected.
func (s *SelectionSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Values returns the selected ids sorted.
func (s *SelectionSet) Values() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Size returns the number of selected ids.
func (s *SelectionSet) Size() int {
	return len(s.ids)
}

func (s *SelectionSet) init() {
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
}
