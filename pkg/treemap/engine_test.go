package treemap

import (
	"math"
	"testing"

	"github.com/spacelens/spacelens/pkg/vfs"
)

// balancedTree builds a root with four files and two subdirectories that
// each hold a few files, sized so nothing triggers LOD culling at typical
// viewport sizes.
func balancedTree() *vfs.Tree {
	t := vfs.New("root")
	d1 := t.AddChild(t.Root, vfs.Node{Name: "photos", IsDir: true})
	t.AddChild(d1, vfs.Node{Name: "a.jpg", Size: 500 << 20})
	t.AddChild(d1, vfs.Node{Name: "b.jpg", Size: 300 << 20})
	t.AddChild(d1, vfs.Node{Name: "c.jpg", Size: 200 << 20})
	d2 := t.AddChild(t.Root, vfs.Node{Name: "music", IsDir: true})
	t.AddChild(d2, vfs.Node{Name: "x.mp3", Size: 400 << 20})
	t.AddChild(d2, vfs.Node{Name: "y.mp3", Size: 350 << 20})
	t.AddChild(t.Root, vfs.Node{Name: "movie.mkv", Size: 900 << 20})
	t.AddChild(t.Root, vfs.Node{Name: "dump.bin", Size: 650 << 20})
	vfs.AggregateSizes(t)
	vfs.SortChildrenBySize(t)
	return t
}

func TestComputeDrawOrderAndDepth(t *testing.T) {
	tree := balancedTree()
	l := Compute(tree, tree.Root, 1280, 800, DefaultConfig())

	if len(l.Rects) < 5 {
		t.Fatalf("layout has only %d rects", len(l.Rects))
	}
	if l.Rects[0].Node != tree.Root || l.Rects[0].Depth != 0 {
		t.Fatalf("first rect is not the root: %+v", l.Rects[0])
	}

	for i, r := range l.Rects {
		// Every ancestor that has a rect must appear earlier.
		for p := tree.Get(r.Node).Parent; !p.IsNone(); p = tree.Get(p).Parent {
			if idx, ok := l.NodeToRect[p]; ok && idx >= i {
				t.Errorf("ancestor %d of rect %d appears at %d, not earlier", p, i, idx)
			}
		}
		// Depth strictly increases down the tree.
		if parent := tree.Get(r.Node).Parent; !parent.IsNone() {
			if pIdx, ok := l.NodeToRect[parent]; ok {
				if r.Depth < l.Rects[pIdx].Depth+1 {
					t.Errorf("rect %d depth %d not below parent depth %d", i, r.Depth, l.Rects[pIdx].Depth)
				}
			}
		}
	}
}

func TestComputePositiveGeometry(t *testing.T) {
	tree := balancedTree()
	cfg := DefaultConfig()
	l := Compute(tree, tree.Root, 640, 480, cfg)

	for i, r := range l.Rects {
		if r.W <= cfg.MinSide || r.H <= cfg.MinSide {
			if i == 0 {
				continue // root covers the viewport, always fine
			}
			t.Errorf("rect %d has sub-threshold size %gx%g", i, r.W, r.H)
		}
	}
}

func TestComputeIndexMatchesRects(t *testing.T) {
	tree := balancedTree()
	l := Compute(tree, tree.Root, 1024, 768, DefaultConfig())

	for node, idx := range l.NodeToRect {
		if idx < 0 || idx >= len(l.Rects) {
			t.Fatalf("index %d out of range for node %d", idx, node)
		}
		if l.Rects[idx].Node != node {
			t.Errorf("NodeToRect[%d] = %d points at node %d", node, idx, l.Rects[idx].Node)
		}
	}
}

func TestChainCollapseDominantChild(t *testing.T) {
	// Dominant child with 99% of the bytes and two 0.5% siblings: collapse
	// must trigger and hand the child the parent's entire inner rectangle.
	tree := vfs.New("root")
	heavy := tree.AddChild(tree.Root, vfs.Node{Name: "node_modules", IsDir: true})
	tree.AddChild(heavy, vfs.Node{Name: "payload.bin", Size: 990_000})
	tree.AddChild(tree.Root, vfs.Node{Name: "readme.md", Size: 5_000})
	tree.AddChild(tree.Root, vfs.Node{Name: "notes.txt", Size: 5_000})
	vfs.AggregateSizes(tree)
	vfs.SortChildrenBySize(tree)

	cfg := DefaultConfig()
	l := Compute(tree, tree.Root, 800, 600, cfg)

	idx, ok := l.NodeToRect[heavy]
	if !ok {
		t.Fatal("dominant child has no rect")
	}
	r := l.Rects[idx]
	root := l.Rects[0]
	// The collapsed child fills the root's inner rectangle, which at depth
	// 0 equals the full viewport.
	if math.Abs(r.W-root.W) > 1e-6 || math.Abs(r.H-root.H) > 1e-6 {
		t.Errorf("collapsed child %gx%g does not fill root %gx%g", r.W, r.H, root.W, root.H)
	}

	// The siblings must not be laid out.
	if len(l.NodeToRect) != 2+1 { // root + heavy + payload
		t.Errorf("unexpected rect count %d (want root, dir, payload)", len(l.NodeToRect))
	}
}

func TestChainCollapseSkipsSingleChildLinks(t *testing.T) {
	// a/b/c each hold 100% of their parent; depth must jump by the number
	// of collapsed links.
	tree := vfs.New("root")
	a := tree.AddChild(tree.Root, vfs.Node{Name: "a", IsDir: true})
	b := tree.AddChild(a, vfs.Node{Name: "b", IsDir: true})
	c := tree.AddChild(b, vfs.Node{Name: "c", IsDir: true})
	tree.AddChild(c, vfs.Node{Name: "data.bin", Size: 1 << 30})
	vfs.AggregateSizes(tree)
	vfs.SortChildrenBySize(tree)

	l := Compute(tree, tree.Root, 800, 600, DefaultConfig())

	cIdx, ok := l.NodeToRect[c]
	if !ok {
		t.Fatal("deepest chain directory has no rect")
	}
	if got := l.Rects[cIdx].Depth; got != 3 {
		t.Errorf("collapsed chain depth = %d, want 3 (1 + 2 skipped links)", got)
	}
	if _, ok := l.NodeToRect[a]; ok {
		t.Error("intermediate chain directory a should not be emitted")
	}
	if _, ok := l.NodeToRect[b]; ok {
		t.Error("intermediate chain directory b should not be emitted")
	}
}

func TestLODCoverageRedistribution(t *testing.T) {
	// A directory with a large fan-out: the kept children must still cover
	// the inner rectangle exactly after tail truncation.
	tree := vfs.New("root")
	for i := 0; i < 300; i++ {
		size := int64(1 << 20)
		if i == 0 {
			size = 400 << 20
		}
		tree.AddChild(tree.Root, vfs.Node{Name: "f", Size: size})
	}
	vfs.AggregateSizes(tree)
	vfs.SortChildrenBySize(tree)

	cfg := DefaultConfig()
	cfg.MinArea = 0.01
	cfg.MinSide = 0.01
	cfg.MaxChildren = 64
	l := Compute(tree, tree.Root, 500, 400, cfg)

	childArea := 0.0
	for _, r := range l.Rects[1:] {
		childArea += r.W * r.H
	}
	want := 500.0 * 400.0
	if math.Abs(childArea-want)/want > 1e-9 {
		t.Errorf("kept children cover %g px², want %g (no dead gaps)", childArea, want)
	}
	if got := len(l.Rects) - 1; got > cfg.MaxChildren {
		t.Errorf("emitted %d children, above MaxChildren %d", got, cfg.MaxChildren)
	}
}

func TestAddRidgeReferenceValues(t *testing.T) {
	// Root-level span x ∈ [0, 1920] with ridge height 0.8.
	var s1, s2 float64
	addRidge(0, 1920, 0.8, &s1, &s2)

	if math.Abs(s1-3.2) > 1e-12 {
		t.Errorf("s1 = %g, want 3.2", s1)
	}
	if math.Abs(s2-(-4*0.8/1920)) > 1e-12 {
		t.Errorf("s2 = %g, want %g", s2, -4*0.8/1920)
	}

	// Degenerate span contributes nothing.
	b1, b2 := s1, s2
	addRidge(5, 5+1e-9, 0.8, &s1, &s2)
	if s1 != b1 || s2 != b2 {
		t.Error("degenerate span changed coefficients")
	}
}

func TestSurfaceAccumulatesAncestorRidges(t *testing.T) {
	tree := balancedTree()
	cfg := DefaultConfig()
	l := Compute(tree, tree.Root, 1280, 800, cfg)

	// Find a depth-2 rect and rebuild its expected surface from its own
	// span plus its parent's surface.
	for _, r := range l.Rects {
		if r.Depth != 2 {
			continue
		}
		parent := tree.Get(r.Node).Parent
		pIdx, ok := l.NodeToRect[parent]
		if !ok {
			continue
		}
		s := l.Rects[pIdx].Surface
		h := cfg.CushionHeight * cfg.CushionFalloff
		addRidge(r.X, r.X+r.W, h, &s[0], &s[1])
		addRidge(r.Y, r.Y+r.H, h, &s[2], &s[3])
		for k := 0; k < 4; k++ {
			if math.Abs(s[k]-r.Surface[k]) > 1e-9 {
				t.Errorf("surface[%d] = %g, want %g", k, r.Surface[k], s[k])
			}
		}
		return
	}
	t.Fatal("no depth-2 rect found")
}

func TestComputeZeroSizeTreeIsEmptyButValid(t *testing.T) {
	tree := vfs.New("root")
	tree.AddChild(tree.Root, vfs.Node{Name: "empty", IsDir: true})
	vfs.AggregateSizes(tree)

	l := Compute(tree, tree.Root, 800, 600, DefaultConfig())
	if len(l.Rects) != 1 {
		t.Errorf("zero-size tree emitted %d rects, want just the root", len(l.Rects))
	}
}

func TestComputeDegenerateViewport(t *testing.T) {
	tree := balancedTree()
	l := Compute(tree, tree.Root, 0, 600, DefaultConfig())
	if len(l.Rects) != 0 {
		t.Errorf("zero-width viewport emitted %d rects", len(l.Rects))
	}
}

func TestComputeLPreservesGlobalScale(t *testing.T) {
	// Many children of varied size give the region split fine granularity,
	// which is the realistic case (directories rarely have 4 entries).
	tree := vfs.New("root")
	for i := 0; i < 40; i++ {
		tree.AddChild(tree.Root, vfs.Node{Name: "f", Size: int64(100-i) << 20})
	}
	vfs.AggregateSizes(tree)
	vfs.SortChildrenBySize(tree)
	cfg := DefaultConfig()
	cfg.MinArea = 1
	cfg.MinSide = 0.1

	// Main region to the right of a reserved 280px panel, plus the strip
	// below it.
	main := Rect{X: 280, Y: 0, W: 1000, H: 600}
	strip := Rect{X: 0, Y: 600, W: 1280, H: 200}
	l := ComputeL(tree, tree.Root, main, strip, cfg)

	if len(l.Rects) < 10 {
		t.Fatalf("L-shape layout emitted only %d rects", len(l.Rects))
	}

	// Depth-1 children across both regions share one bytes-per-pixel
	// scale up to the split granularity (largest child ≈ 3% of bytes).
	totalPx := main.Area() + strip.Area()
	rootSize := float64(tree.Get(tree.Root).Size)
	wantScale := totalPx / rootSize

	for _, r := range l.Rects[1:] {
		if r.Depth != 1 {
			continue
		}
		size := float64(tree.Get(r.Node).Size)
		scale := r.W * r.H / size
		if math.Abs(scale-wantScale)/wantScale > 0.05 {
			t.Errorf("node %d bytes-per-pixel scale %g deviates from global %g", r.Node, scale, wantScale)
		}
	}

	// Every rect stays inside its region (no bleeding across the panel).
	for i, r := range l.Rects[1:] {
		inMain := r.X >= main.X-1e-6 && r.Y+r.H <= main.Y+main.H+1e-6
		inStrip := r.Y >= strip.Y-1e-6
		if !inMain && !inStrip {
			t.Errorf("rect %d escapes both regions: %+v", i+1, r)
		}
	}
}

func TestHitTestFindsDeepestRect(t *testing.T) {
	tree := balancedTree()
	l := Compute(tree, tree.Root, 800, 600, DefaultConfig())

	// A point inside any depth-1 rect must resolve to that rect or one of
	// its descendants, never to the root.
	for _, r := range l.Rects[1:] {
		cx, cy := r.X+r.W/2, r.Y+r.H/2
		hit := l.HitTest(cx, cy)
		if hit <= 0 {
			t.Fatalf("HitTest(%g, %g) = %d, want a non-root rect", cx, cy, hit)
		}
	}
	if hit := l.HitTest(-5, -5); hit != -1 {
		t.Errorf("HitTest outside viewport = %d, want -1", hit)
	}
}
