package collector

import "github.com/dgallion1/docnav/internal/navtree"

// seenSet holds items keyed by identity key in first-seen order.
type seenSet struct {
	index map[string]int
	items []navtree.NavItem
}

func newSeenSet() *seenSet {
	return &seenSet{index: make(map[string]int)}
}

// add inserts item unless its key was already seen. Returns true if new.
func (s *seenSet) add(item navtree.NavItem) bool {
	if _, ok := s.index[item.IdentityKey]; ok {
		return false
	}
	s.index[item.IdentityKey] = len(s.items)
	s.items = append(s.items, item)
	return true
}

// merge adds every item of a snapshot and returns the number of new ones.
func (s *seenSet) merge(snapshot []navtree.NavItem) int {
	n := 0
	for _, item := range snapshot {
		if s.add(item) {
			n++
		}
	}
	return n
}

func (s *seenSet) len() int {
	return len(s.items)
}

func (s *seenSet) list() []navtree.NavItem {
	out := make([]navtree.NavItem, len(s.items))
	copy(out, s.items)
	return out
}
