package render

import (
	"math"
	"testing"

	"github.com/spacelens/spacelens/pkg/treemap"
	"github.com/spacelens/spacelens/pkg/vfs"
)

func smallLayout(t *testing.T) (*vfs.Tree, *treemap.Layout) {
	t.Helper()
	tree := vfs.New("root")
	tree.AddChild(tree.Root, vfs.Node{Name: "a.mp4", Size: 600, Ext: tree.InternExt("mp4")})
	tree.AddChild(tree.Root, vfs.Node{Name: "b.jpg", Size: 400, Ext: tree.InternExt("jpg")})
	vfs.AggregateSizes(tree)
	vfs.SortChildrenBySize(tree)

	cfg := treemap.DefaultConfig()
	cfg.MinArea = 1
	return tree, treemap.Compute(tree, tree.Root, 64, 48, cfg)
}

func TestRasterizeBufferShape(t *testing.T) {
	tree, l := smallLayout(t)
	for _, dims := range [][2]int{{64, 48}, {1, 1}, {0, 10}, {7, 0}} {
		buf := Rasterize(dims[0], dims[1], l.Rects, tree, DefaultCushionConfig(), DefaultColorSettings())
		if want := dims[0] * dims[1] * 4; len(buf) != want {
			t.Errorf("Rasterize(%d, %d): buffer is %d bytes, want %d", dims[0], dims[1], len(buf), want)
		}
	}
}

func TestRasterizeCoversBackground(t *testing.T) {
	tree, l := smallLayout(t)
	buf := Rasterize(64, 48, l.Rects, tree, DefaultCushionConfig(), DefaultColorSettings())

	nonBackground := 0
	for i := 0; i < len(buf); i += 4 {
		if buf[i] != Background[0] || buf[i+1] != Background[1] || buf[i+2] != Background[2] {
			nonBackground++
		}
		if buf[i+3] != 255 {
			t.Fatalf("pixel %d not opaque: alpha %d", i/4, buf[i+3])
		}
	}
	if nonBackground == 0 {
		t.Error("rasterized buffer contains only background pixels")
	}
}

func TestRasterizeEmptyLayoutIsAllBackground(t *testing.T) {
	tree := vfs.New("root")
	buf := Rasterize(16, 16, nil, tree, DefaultCushionConfig(), DefaultColorSettings())
	for i := 0; i < len(buf); i += 4 {
		if buf[i] != Background[0] || buf[i+1] != Background[1] || buf[i+2] != Background[2] || buf[i+3] != 255 {
			t.Fatalf("pixel %d is not background", i/4)
		}
	}
}

func TestRasterizeClampsOutOfBoundsRects(t *testing.T) {
	tree := vfs.New("root")
	id := tree.AddChild(tree.Root, vfs.Node{Name: "x.bin", Size: 10})

	rects := []treemap.LayoutRect{
		{Node: id, X: -20, Y: -20, W: 1000, H: 1000, Depth: 1},
	}
	// Must not panic and must fill the whole (small) buffer.
	buf := Rasterize(8, 8, rects, tree, DefaultCushionConfig(), DefaultColorSettings())
	if len(buf) != 8*8*4 {
		t.Fatalf("buffer is %d bytes", len(buf))
	}
	for i := 0; i < len(buf); i += 4 {
		if buf[i] == Background[0] && buf[i+1] == Background[1] && buf[i+2] == Background[2] {
			t.Fatalf("pixel %d left as background under a covering rect", i/4)
		}
	}
}

func TestRasterizeZeroLightVectorFallsBack(t *testing.T) {
	tree, l := smallLayout(t)
	cfg := DefaultCushionConfig()
	cfg.Light = [3]float64{0, 0, 0}
	buf := Rasterize(64, 48, l.Rects, tree, cfg, DefaultColorSettings())
	for i := 0; i < len(buf); i += 4 {
		if buf[i+3] != 255 {
			t.Fatal("zero light vector broke rasterization")
		}
	}
}

func TestRasterizeChildOverwritesParent(t *testing.T) {
	tree := vfs.New("root")
	dir := tree.AddChild(tree.Root, vfs.Node{Name: "stuff", IsDir: true})
	file := tree.AddChild(dir, vfs.Node{Name: "clip.mp4", Size: 100, Ext: tree.InternExt("mp4")})
	vfs.AggregateSizes(tree)

	rects := []treemap.LayoutRect{
		{Node: dir, X: 0, Y: 0, W: 32, H: 32, Depth: 1},
		{Node: file, X: 8, Y: 8, W: 16, H: 16, Depth: 2},
	}
	cs := DefaultColorSettings()
	buf := Rasterize(32, 32, rects, tree, DefaultCushionConfig(), cs)

	// Sample a pixel only the parent covers and one the child overwrote;
	// the directory palette is muted gray-ish, the mp4 color is a warm
	// category hue, so the red channel difference is clear.
	parentIdx := (2*32 + 2) * 4
	childIdx := (16*32 + 16) * 4
	if buf[parentIdx] == buf[childIdx] && buf[parentIdx+1] == buf[childIdx+1] && buf[parentIdx+2] == buf[childIdx+2] {
		t.Error("child rect did not overwrite parent pixels")
	}
}

func TestFastLightingStaysCloseToFull(t *testing.T) {
	tree, l := smallLayout(t)
	full := DefaultCushionConfig()
	fast := DefaultCushionConfig()
	fast.FastLighting = true

	a := Rasterize(64, 48, l.Rects, tree, full, DefaultColorSettings())
	b := Rasterize(64, 48, l.Rects, tree, fast, DefaultColorSettings())

	for i := 0; i < len(a); i++ {
		if d := int(a[i]) - int(b[i]); d > 3 || d < -3 {
			t.Fatalf("byte %d: fast mode deviates by %d", i, d)
		}
	}
}

func TestParallelRasterizationMatchesSequential(t *testing.T) {
	tree, l := smallLayout(t)
	seq := DefaultCushionConfig()
	par := DefaultCushionConfig()
	par.Workers = 4

	a := Rasterize(64, 48, l.Rects, tree, seq, DefaultColorSettings())
	b := Rasterize(64, 48, l.Rects, tree, par, DefaultColorSettings())
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("byte %d differs between sequential and parallel rasterization", i)
		}
	}
}

func TestRsqrtAccuracy(t *testing.T) {
	for _, v := range []float64{0.5, 1, 1.7, 4, 25, 1e4} {
		got := rsqrt(v)
		want := 1 / math.Sqrt(v)
		if math.Abs(got-want)/want > 0.005 {
			t.Errorf("rsqrt(%g) = %g, want ≈ %g", v, got, want)
		}
	}
}
