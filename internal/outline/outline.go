// Package outline rebuilds a heading hierarchy from a flat, document-order
// list of headings.
//
// The rank of a heading is the position of its tag in a caller-supplied
// ordered list (for example h1..h6). Build walks the headings once,
// keeping a pointer into the tree under construction: it climbs while the
// heading ranks above the current node, then attaches the heading as a
// sibling (same rank) or child (lower rank). A virtual root of depth -1
// is the ultimate ancestor, so out-of-order headings (an h2 before any h1)
// land at the top level instead of disappearing.
package outline

import "strings"

// Anchor locates a heading in the paginated document.
type Anchor struct {
	Page int     // 0-based page index
	Top  float64 // offset from the page top, in points
}

// Heading is one heading element read from the rendered document.
type Heading struct {
	Tag    string
	Rank   int // index of Tag in the rank list, -1 if absent
	Text   string
	ID     string
	Order  int // document order
	Anchor *Anchor
}

// Entry is a node of the outline tree. The top-level slice returned by
// Build holds the roots; entries carry no reference to their parent.
type Entry struct {
	Title    string  `json:"title"`
	ID       string  `json:"id"`
	Children []Entry `json:"children,omitempty"`
}

// Rank returns the position of tag in tags, ignoring case, or -1.
func Rank(tags []string, tag string) int {
	for i, t := range tags {
		if strings.EqualFold(t, tag) {
			return i
		}
	}
	return -1
}

// node is an arena slot. parent is an index into the arena; the
// virtual root sits at index 0 with parent -1.
type node struct {
	title    string
	id       string
	depth    int
	parent   int
	children []int
}

const rootIndex = 0

// Build converts headings, in document order, into an outline tree.
// Headings with a negative rank are skipped. The result depends only on
// the input order; replaying the same input yields the same tree.
func Build(headings []Heading) []Entry {
	arena := make([]node, 1, len(headings)+1)
	arena[rootIndex] = node{depth: -1, parent: -1}
	current := rootIndex

	for _, h := range headings {
		if h.Rank < 0 {
			continue
		}
		for h.Rank < arena[current].depth {
			current = arena[current].parent
		}

		parent := current
		if h.Rank == arena[current].depth {
			parent = arena[current].parent
		}

		arena = append(arena, node{
			title:  h.Text,
			id:     h.ID,
			depth:  h.Rank,
			parent: parent,
		})
		idx := len(arena) - 1
		arena[parent].children = append(arena[parent].children, idx)
		current = idx
	}

	return materialize(arena, arena[rootIndex].children)
}

// materialize copies arena nodes into Entry values, dropping parent links.
func materialize(arena []node, indices []int) []Entry {
	if len(indices) == 0 {
		return nil
	}
	entries := make([]Entry, len(indices))
	for i, idx := range indices {
		n := arena[idx]
		entries[i] = Entry{
			Title:    n.title,
			ID:       n.id,
			Children: materialize(arena, n.children),
		}
	}
	return entries
}

// Count returns the total number of entries in the tree.
func Count(entries []Entry) int {
	n := len(entries)
	for _, e := range entries {
		n += Count(e.Children)
	}
	return n
}

// Anchors maps heading IDs to their position. The first heading wins
// when an ID repeats, which happens when a heading is split across pages.
func Anchors(headings []Heading) map[string]Anchor {
	anchors := make(map[string]Anchor, len(headings))
	for _, h := range headings {
		if h.ID == "" || h.Anchor == nil {
			continue
		}
		if _, ok := anchors[h.ID]; ok {
			continue
		}
		anchors[h.ID] = *h.Anchor
	}
	return anchors
}
