package catalog

import "errors"

// DefaultFootprint is the radius an item occupies when the catalog does not
// declare one.
const DefaultFootprint = 0.5

// ErrNoItems is returned by Load when the file declares no usable items.
var ErrNoItems = errors.New("catalog: no items")

// Item is one placeable prefab.
type Item struct {
	Name      string
	Prefab    string   // prefab reference handed to the instantiator
	Group     string   // enclosing <Group Name>
	Tags      []string // group tag plus the item's own tags
	Height    *float64 // vertical extent to keep clear; nil skips the check
	Footprint float64  // radius the placed item occupies
}

// HasTag reports whether the item carries tag.
func (it *Item) HasTag(tag string) bool {
	for _, t := range it.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Catalog is the full list of items read from a catalog file.
type Catalog struct {
	Items []Item
}

// List returns the items carrying filterTag, or every item when filterTag is
// empty.
func (c *Catalog) List(filterTag string) []Item {
	if filterTag == "" {
		return append([]Item(nil), c.Items...)
	}
	var out []Item
	for i := range c.Items {
		if c.Items[i].HasTag(filterTag) {
			out = append(out, c.Items[i])
		}
	}
	return out
}
