package vfs

import "sort"

// AggregateSizes fills in directory sizes bottom-up so that every
// directory's Size equals the sum of its descendant file sizes.
//
// Children always have higher arena indices than their parents (AddChild
// appends), so a single reverse pass visits children before parents.
func AggregateSizes(t *Tree) {
	for i := len(t.Nodes) - 1; i >= 0; i-- {
		if !t.Nodes[i].IsDir {
			continue
		}
		var total int64
		for c := t.Nodes[i].FirstChild; !c.IsNone(); c = t.Nodes[c].NextSibling {
			total += t.Nodes[c].Size
		}
		t.Nodes[i].Size = total
	}
}

// SortChildrenBySize re-links every directory's sibling list in
// size-descending order. Nodes are not moved in the arena; only the
// FirstChild/NextSibling links change. The squarified layout expects
// children largest-first.
func SortChildrenBySize(t *Tree) {
	var children []NodeID
	for i := range t.Nodes {
		if !t.Nodes[i].IsDir || t.Nodes[i].FirstChild.IsNone() {
			continue
		}

		children = children[:0]
		for c := t.Nodes[i].FirstChild; !c.IsNone(); c = t.Nodes[c].NextSibling {
			children = append(children, c)
		}

		sort.SliceStable(children, func(a, b int) bool {
			return t.Nodes[children[a]].Size > t.Nodes[children[b]].Size
		})

		t.Nodes[i].FirstChild = children[0]
		for j := 0; j < len(children)-1; j++ {
			t.Nodes[children[j]].NextSibling = children[j+1]
		}
		t.Nodes[children[len(children)-1]].NextSibling = NoNode
	}
}
