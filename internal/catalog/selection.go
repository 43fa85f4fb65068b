package catalog

// Selection tracks per-item inclusion toggles over a fixed item list. All
// items start disabled.
type Selection struct {
	items []Item
	on    []bool
}

// NewSelection copies items and disables all of them.
func NewSelection(items []Item) *Selection {
	return &Selection{
		items: append([]Item(nil), items...),
		on:    make([]bool, len(items)),
	}
}

// Len returns the number of items.
func (s *Selection) Len() int {
	return len(s.items)
}

// Item returns item i.
func (s *Selection) Item(i int) *Item {
	return &s.items[i]
}

// Enabled reports whether item i is included. Out-of-range indices are not.
func (s *Selection) Enabled(i int) bool {
	return i >= 0 && i < len(s.on) && s.on[i]
}

// Set includes or excludes item i. It reports whether the state changed.
func (s *Selection) Set(i int, on bool) bool {
	if i < 0 || i >= len(s.on) || s.on[i] == on {
		return false
	}
	s.on[i] = on
	return true
}

// Toggle flips item i and returns its new state.
func (s *Selection) Toggle(i int) bool {
	if i < 0 || i >= len(s.on) {
		return false
	}
	s.on[i] = !s.on[i]
	return s.on[i]
}

// Selected returns the included items in catalog order. The pointers stay
// valid for the lifetime of the selection.
func (s *Selection) Selected() []*Item {
	var out []*Item
	for i := range s.items {
		if s.on[i] {
			out = append(out, &s.items[i])
		}
	}
	return out
}
