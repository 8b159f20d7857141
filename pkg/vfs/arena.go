// Package vfs stores a scanned filesystem as a flat arena of nodes.
//
// The tree uses a sibling-list representation: every node carries the index
// of its parent, its first child, and its next sibling. All relationships
// are indices into one growable slice, so the structure is cycle-free and
// cheap to copy around as a single value.
//
// A Tree is built once by the scanner, aggregated bottom-up, sorted, and
// then treated as read-only by the layout and render packages.
package vfs

import "iter"

// NodeID is an index into the arena's node slice.
type NodeID uint32

// NoNode is the sentinel for "no parent / no child / no sibling".
const NoNode NodeID = ^NodeID(0)

// IsNone reports whether the id is the NoNode sentinel.
func (id NodeID) IsNone() bool { return id == NoNode }

// Node is a single file or directory in the arena.
type Node struct {
	// Name is the file or directory name, not the full path.
	Name string
	// Size in bytes. For files the actual size; for directories the
	// aggregated sum of all descendant file sizes (see AggregateSizes).
	Size int64
	// IsDir marks directory nodes.
	IsDir bool
	// Ext is an index into the tree's extension table (0 = none).
	Ext uint16
	// Depth from the root (root = 0).
	Depth uint16

	Parent      NodeID
	FirstChild  NodeID
	NextSibling NodeID
}

// Tree is the arena of nodes plus the deduplicated extension table.
type Tree struct {
	Nodes []Node
	Root  NodeID
	// Exts maps extension id → lowercase extension string ("pdf", "go").
	// Index 0 is the empty extension.
	Exts []string

	extIndex map[string]uint16
}

// New creates a tree containing only a root directory node.
func New(rootName string) *Tree {
	return &Tree{
		Nodes: []Node{{
			Name:        rootName,
			IsDir:       true,
			Parent:      NoNode,
			FirstChild:  NoNode,
			NextSibling: NoNode,
		}},
		Root:     0,
		Exts:     []string{""},
		extIndex: map[string]uint16{"": 0},
	}
}

// AddChild appends a node under parent and returns its id.
// The child is prepended to the parent's sibling list, which keeps
// insertion O(1); SortChildrenBySize fixes the order afterwards.
func (t *Tree) AddChild(parent NodeID, n Node) NodeID {
	id := NodeID(len(t.Nodes))
	n.Parent = parent
	n.Depth = t.Nodes[parent].Depth + 1
	n.NextSibling = t.Nodes[parent].FirstChild
	n.FirstChild = NoNode
	t.Nodes[parent].FirstChild = id
	t.Nodes = append(t.Nodes, n)
	return id
}

// Get returns the node for id. The pointer is valid until the next AddChild.
func (t *Tree) Get(id NodeID) *Node { return &t.Nodes[id] }

// Len is the total number of nodes, root included.
func (t *Tree) Len() int { return len(t.Nodes) }

// Empty reports whether the tree holds only its root.
func (t *Tree) Empty() bool { return len(t.Nodes) <= 1 }

// Children iterates over the direct children of parent in sibling order.
func (t *Tree) Children(parent NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for id := t.Nodes[parent].FirstChild; !id.IsNone(); id = t.Nodes[id].NextSibling {
			if !yield(id) {
				return
			}
		}
	}
}

// ChildIDs collects the direct children of parent into a slice.
func (t *Tree) ChildIDs(parent NodeID) []NodeID {
	var ids []NodeID
	for id := range t.Children(parent) {
		ids = append(ids, id)
	}
	return ids
}

// InternExt returns the id for ext, adding it to the table if new.
// Extensions are stored lowercase without the leading dot.
func (t *Tree) InternExt(ext string) uint16 {
	lower := lowerASCII(ext)
	if t.extIndex == nil {
		t.extIndex = map[string]uint16{"": 0}
	}
	if id, ok := t.extIndex[lower]; ok {
		return id
	}
	id := uint16(len(t.Exts))
	t.Exts = append(t.Exts, lower)
	t.extIndex[lower] = id
	return id
}

// ExtOf returns the extension string for a node ("" for directories
// and extension-less files).
func (t *Tree) ExtOf(id NodeID) string {
	n := &t.Nodes[id]
	if int(n.Ext) >= len(t.Exts) {
		return ""
	}
	return t.Exts[n.Ext]
}

func lowerASCII(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
