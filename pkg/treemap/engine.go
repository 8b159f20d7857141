package treemap

import (
	"math"
	"sort"

	"github.com/spacelens/spacelens/pkg/vfs"
)

// LayoutRect is one positioned, visible tree node in screen space.
type LayoutRect struct {
	Node vfs.NodeID
	X    float64
	Y    float64
	W    float64
	H    float64
	// Depth from the layout root. Normally parent depth + 1; collapsed
	// directory chains jump by 1 + the number of skipped links.
	Depth int
	// Surface holds the accumulated cushion coefficients
	// [sx1, sx2, sy1, sy2] describing the separable quadratic height field
	// z(x,y) = sx1·x + sx2·x² + sy1·y + sy2·y², including every ancestor's
	// ridge contribution.
	Surface [4]float64
}

// Layout is the complete result of one layout pass. Rects is ordered
// parents-before-children (root first); the rasterizer relies on that order
// so child pixels overwrite parent pixels. NodeToRect gives O(1) lookup for
// hit-testing and highlighting.
type Layout struct {
	Rects      []LayoutRect
	NodeToRect map[vfs.NodeID]int
}

// HitTest returns the deepest rectangle containing the point, or -1.
// Later rects are drawn on top, so the last hit wins.
func (l *Layout) HitTest(px, py float64) int {
	hit := -1
	for i := range l.Rects {
		r := &l.Rects[i]
		if (Rect{r.X, r.Y, r.W, r.H}).Contains(px, py) {
			hit = i
		}
	}
	return hit
}

// addRidge folds one axis-aligned parabolic ridge of height h over the span
// [lo, hi] into the coefficient pair (s1, s2). This is the incremental CTM
// step from van Wijk & van de Wetering 1999. Near-zero spans contribute
// nothing.
func addRidge(lo, hi, h float64, s1, s2 *float64) {
	denom := hi - lo
	if math.Abs(denom) < 1e-6 {
		return
	}
	*s1 += 4 * h * (hi + lo) / denom
	*s2 -= 4 * h / denom
}

// Compute lays out the subtree under root into a viewport of the given
// size. Root may be any directory, which is how drill-down works.
func Compute(t *vfs.Tree, root vfs.NodeID, viewportW, viewportH float64, cfg Config) *Layout {
	return ComputeIn(t, root, Rect{W: viewportW, H: viewportH}, cfg)
}

// ComputeIn lays out the subtree under root inside an arbitrary target
// rectangle, e.g. the area left over after reserving UI chrome.
func ComputeIn(t *vfs.Tree, root vfs.NodeID, target Rect, cfg Config) *Layout {
	l := &Layout{
		Rects:      make([]LayoutRect, 0, t.Len()/4+1),
		NodeToRect: make(map[vfs.NodeID]int, t.Len()/4+1),
	}
	if target.W <= 0 || target.H <= 0 {
		return l
	}

	l.push(LayoutRect{Node: root, X: target.X, Y: target.Y, W: target.W, H: target.H})

	if t.Get(root).IsDir {
		e := engine{tree: t, cfg: cfg, out: l}
		e.layoutChildren(root, target, 0, [4]float64{}, cfg.CushionHeight)
	}
	return l
}

// ComputeL lays out root's children across two disjoint regions (e.g. the
// area right of a reserved panel plus the strip below it) while keeping one
// global size-to-area scale: a child occupies the same number of pixels
// regardless of which region it lands in.
//
// The root rectangle recorded in the layout is the bounding box of both
// regions, which keeps hit-testing for the root meaningful.
func ComputeL(t *vfs.Tree, root vfs.NodeID, main, strip Rect, cfg Config) *Layout {
	l := &Layout{
		Rects:      make([]LayoutRect, 0, t.Len()/4+1),
		NodeToRect: make(map[vfs.NodeID]int, t.Len()/4+1),
	}
	mainArea, stripArea := main.Area(), strip.Area()
	if mainArea <= 0 && stripArea <= 0 {
		return l
	}
	if mainArea <= 0 {
		return ComputeIn(t, root, strip, cfg)
	}
	if stripArea <= 0 {
		return ComputeIn(t, root, main, cfg)
	}

	bounds := union(main, strip)
	l.push(LayoutRect{Node: root, X: bounds.X, Y: bounds.Y, W: bounds.W, H: bounds.H})

	node := t.Get(root)
	if !node.IsDir || node.Size <= 0 {
		return l
	}

	e := engine{tree: t, cfg: cfg, out: l}
	children := t.ChildIDs(root)
	sort.SliceStable(children, func(a, b int) bool {
		return t.Get(children[a]).Size > t.Get(children[b]).Size
	})

	// Split the size-descending child list at the prefix whose byte share
	// best matches the main region's pixel share. Each side then fills its
	// region exactly, so the global bytes-per-pixel scale is preserved up
	// to the split granularity.
	mainShare := float64(node.Size) * mainArea / (mainArea + stripArea)
	split := len(children)
	bestDiff := math.Inf(1)
	prefix := 0.0
	for k, id := range children {
		prefix += float64(t.Get(id).Size)
		if diff := math.Abs(prefix - mainShare); diff < bestDiff {
			bestDiff = diff
			split = k + 1
		}
	}

	e.layoutGroup(root, children[:split], main, 0, [4]float64{}, cfg.CushionHeight)
	e.layoutGroup(root, children[split:], strip, 0, [4]float64{}, cfg.CushionHeight)
	return l
}

func union(a, b Rect) Rect {
	x0 := math.Min(a.X, b.X)
	y0 := math.Min(a.Y, b.Y)
	x1 := math.Max(a.X+a.W, b.X+b.W)
	y1 := math.Max(a.Y+a.H, b.Y+b.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

func (l *Layout) push(r LayoutRect) {
	l.NodeToRect[r.Node] = len(l.Rects)
	l.Rects = append(l.Rects, r)
}

// engine threads the output accumulator and config through the recursion.
type engine struct {
	tree *vfs.Tree
	cfg  Config
	out  *Layout
}

// layoutChildren recursively lays out the children of parent inside rect.
// surface is the parent's accumulated coefficients; hgt the ridge height at
// this depth.
func (e *engine) layoutChildren(parent vfs.NodeID, rect Rect, depth int, surface [4]float64, hgt float64) {
	cfg := &e.cfg
	if depth >= cfg.MaxDepth {
		return
	}

	inner := e.innerRect(rect, depth)
	if inner.W <= 0 || inner.H <= 0 || inner.Area() < cfg.MinArea {
		return
	}

	parentNode := e.tree.Get(parent)
	if parentNode.Size <= 0 {
		return
	}

	// Dominant single-child chains take the whole inner rectangle instead
	// of producing nested same-sized slivers.
	if target, skipped, ok := e.collapseChain(parent, depth); ok {
		e.emitCollapsed(target, inner, depth+1+skipped, surface, hgt, skipped)
		return
	}

	children := e.tree.ChildIDs(parent)
	if len(children) == 0 {
		return
	}
	sort.SliceStable(children, func(a, b int) bool {
		return e.tree.Get(children[a]).Size > e.tree.Get(children[b]).Size
	})

	e.layoutGroup(parent, children, inner, depth, surface, hgt)
}

// layoutGroup runs area normalization, LOD truncation, redistribution,
// packing and emission for an explicit size-descending child list. The
// rect is used as-is (insets were already applied by the caller).
func (e *engine) layoutGroup(parent vfs.NodeID, children []vfs.NodeID, inner Rect, depth int, surface [4]float64, hgt float64) {
	cfg := &e.cfg
	parentSize := float64(e.tree.Get(parent).Size)
	if parentSize <= 0 || len(children) == 0 {
		return
	}

	innerArea := inner.Area()
	keptIDs := make([]vfs.NodeID, 0, min(len(children), cfg.MaxChildren))
	keptAreas := make([]float64, 0, cap(keptIDs))
	covered := 0.0
	for _, id := range children {
		area := float64(e.tree.Get(id).Size) / parentSize * innerArea
		if math.IsNaN(area) || math.IsInf(area, 0) || area <= 0 {
			continue
		}
		if len(keptIDs) >= cfg.MaxChildren {
			break
		}
		// Always keep the largest child; after that keep at least 8 and
		// then only until the coverage target is reached.
		if len(keptIDs) > 0 && len(keptIDs) >= 8 && covered >= cfg.CoverageTarget*innerArea {
			break
		}
		keptIDs = append(keptIDs, id)
		keptAreas = append(keptAreas, area)
		covered += area
	}
	if len(keptIDs) == 0 || covered <= 0 {
		return
	}

	// Redistribute the dropped tail so the kept set fills the rectangle
	// exactly; otherwise truncation would leave dead background strips.
	scale := innerArea / covered
	for i := range keptAreas {
		keptAreas[i] *= scale
	}

	positioned := Squarify(keptAreas, inner.X, inner.Y, inner.W, inner.H)

	for i := 0; i < len(positioned) && i < len(keptIDs); i++ {
		pos := positioned[i]
		id := keptIDs[i]
		if pos.W <= cfg.MinSide || pos.H <= cfg.MinSide || pos.Area() < cfg.MinArea {
			continue
		}

		childDepth := depth + 1
		s := surface
		addRidge(pos.X, pos.X+pos.W, hgt, &s[0], &s[1])
		addRidge(pos.Y, pos.Y+pos.H, hgt, &s[2], &s[3])

		e.out.push(LayoutRect{Node: id, X: pos.X, Y: pos.Y, W: pos.W, H: pos.H, Depth: childDepth, Surface: s})

		if e.tree.Get(id).IsDir && pos.W >= cfg.RecurseMinSide && pos.H >= cfg.RecurseMinSide {
			e.layoutChildren(id, pos, childDepth, s, hgt*cfg.CushionFalloff)
		}
	}
}

// emitCollapsed places the final node of a collapsed chain over the whole
// inner rectangle and recurses into it. skipped is the number of chain
// links beyond the first child; the ridge height decays once per skipped
// level so deep chains do not over-darken.
func (e *engine) emitCollapsed(target vfs.NodeID, inner Rect, depth int, surface [4]float64, hgt float64, skipped int) {
	cfg := &e.cfg
	if inner.W <= cfg.MinSide || inner.H <= cfg.MinSide {
		return
	}

	s := surface
	addRidge(inner.X, inner.X+inner.W, hgt, &s[0], &s[1])
	addRidge(inner.Y, inner.Y+inner.H, hgt, &s[2], &s[3])

	e.out.push(LayoutRect{Node: target, X: inner.X, Y: inner.Y, W: inner.W, H: inner.H, Depth: depth, Surface: s})

	if e.tree.Get(target).IsDir && inner.W >= cfg.RecurseMinSide && inner.H >= cfg.RecurseMinSide {
		e.layoutChildren(target, inner, depth, s, hgt*math.Pow(cfg.CushionFalloff, float64(1+skipped)))
	}
}

// collapseChain checks whether parent's bytes are concentrated in a single
// child directory (>= DominantChildFrac, with all siblings together <=
// SiblingResidueFrac) and, if so, follows further dominant single-child
// links. It returns the deepest such directory and how many extra links
// were skipped past the first child.
func (e *engine) collapseChain(parent vfs.NodeID, depth int) (vfs.NodeID, int, bool) {
	first, ok := e.dominantChild(parent)
	if !ok {
		return 0, 0, false
	}
	target := first
	skipped := 0
	for depth+1+skipped+1 < e.cfg.MaxDepth {
		next, ok := e.dominantChild(target)
		if !ok {
			break
		}
		target = next
		skipped++
	}
	return target, skipped, true
}

// dominantChild returns the single child directory holding at least
// DominantChildFrac of parent's bytes, provided the remaining siblings sum
// to at most SiblingResidueFrac.
func (e *engine) dominantChild(parent vfs.NodeID) (vfs.NodeID, bool) {
	parentSize := float64(e.tree.Get(parent).Size)
	if parentSize <= 0 {
		return 0, false
	}

	best := vfs.NoNode
	var bestSize, total float64
	for id := range e.tree.Children(parent) {
		n := e.tree.Get(id)
		total += float64(n.Size)
		if n.IsDir && float64(n.Size) > bestSize {
			best = id
			bestSize = float64(n.Size)
		}
	}
	if best.IsNone() {
		return 0, false
	}
	if bestSize < e.cfg.DominantChildFrac*parentSize {
		return 0, false
	}
	if total-bestSize > e.cfg.SiblingResidueFrac*parentSize {
		return 0, false
	}
	return best, true
}

// innerRect shrinks rect by sibling padding, the directory frame and the
// header band. The root (depth 0) draws neither padding nor chrome.
func (e *engine) innerRect(rect Rect, depth int) Rect {
	if depth == 0 {
		return rect
	}
	cfg := &e.cfg
	pad := cfg.Padding * math.Pow(cfg.PaddingFalloff, float64(depth))
	frame := cfg.FrameWidth * math.Pow(cfg.FrameFalloff, float64(depth))
	header := cfg.HeaderHeight * math.Pow(cfg.FrameFalloff, float64(depth))

	edge := pad + frame
	return Rect{
		X: rect.X + edge,
		Y: rect.Y + edge + header,
		W: math.Max(rect.W-2*edge, 0),
		H: math.Max(rect.H-2*edge-header, 0),
	}
}
