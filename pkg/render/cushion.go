package render

import (
	"math"
	"sync"

	"github.com/spacelens/spacelens/pkg/treemap"
	"github.com/spacelens/spacelens/pkg/vfs"
)

// CushionConfig holds the shading parameters.
type CushionConfig struct {
	// Ambient light intensity; the floor every pixel receives.
	Ambient float64
	// Diffuse light intensity scaling the Lambertian term.
	Diffuse float64
	// Light is the light direction; normalized once per rasterization.
	// A zero vector falls back to the default direction.
	Light [3]float64
	// FastLighting approximates the per-pixel normal length with a
	// reciprocal-sqrt estimate instead of a full square root. Intensity
	// stays monotone in dot(n, light) and floored at Ambient in both
	// modes.
	FastLighting bool
	// Workers > 1 rasterizes the rows of each rectangle concurrently.
	// Rectangles are always drawn strictly in order, so parent pixels are
	// complete before any child overwrites them.
	Workers int
}

// DefaultCushionConfig returns the documented defaults: the light direction
// (1, 2, 10) from the paper, with ambient/diffuse tuned for stronger
// visual separation than the paper's 40/215.
func DefaultCushionConfig() CushionConfig {
	return CushionConfig{
		Ambient: 0.26,
		Diffuse: 0.92,
		Light:   [3]float64{1, 2, 10},
	}
}

// Background is the dark neutral backdrop behind the treemap.
var Background = [4]uint8{20, 22, 28, 255}

// gamma lifts midtones slightly for contrast.
const gamma = 1.22

// Rasterize paints the layout into a width*height*4 RGBA buffer, row-major
// with origin top-left, suitable for direct texture upload.
//
// Rectangles are drawn in input order; the layout guarantees parents come
// before children, so child pixels overwrite their ancestors' and nesting
// appears without explicit clipping. Out-of-range rectangle bounds are
// clamped to the buffer, and a rasterization call never fails: degenerate
// input just yields a sparser image.
func Rasterize(width, height int, rects []treemap.LayoutRect, t *vfs.Tree, cfg CushionConfig, colors ColorSettings) []byte {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	buf := make([]byte, width*height*4)
	for i := 0; i < len(buf); i += 4 {
		buf[i] = Background[0]
		buf[i+1] = Background[1]
		buf[i+2] = Background[2]
		buf[i+3] = Background[3]
	}
	if width == 0 || height == 0 {
		return buf
	}

	lx, ly, lz := normalizeLight(cfg.Light)

	for i := range rects {
		r := &rects[i]
		node := t.Get(r.Node)

		var base RGB
		if node.IsDir {
			base = DirectoryColor(node.Name, r.Depth, colors)
		} else {
			base = ExtensionColor(t.ExtOf(r.Node), colors)
		}

		px0 := clampInt(int(r.X), 0, width)
		py0 := clampInt(int(r.Y), 0, height)
		px1 := clampInt(int(math.Ceil(r.X+r.W)), 0, width)
		py1 := clampInt(int(math.Ceil(r.Y+r.H)), 0, height)
		if px0 >= px1 || py0 >= py1 {
			continue
		}

		span := rectSpan{
			buf: buf, stride: width,
			px0: px0, px1: px1,
			surface: r.Surface,
			base:    base,
			lx:      lx, ly: ly, lz: lz,
			ambient: cfg.Ambient, diffuse: cfg.Diffuse,
			fast: cfg.FastLighting,
		}

		if cfg.Workers > 1 && py1-py0 >= cfg.Workers {
			span.shadeRowsParallel(py0, py1, cfg.Workers)
		} else {
			span.shadeRows(py0, py1)
		}
	}
	return buf
}

// rectSpan carries everything needed to shade one rectangle's rows.
type rectSpan struct {
	buf     []byte
	stride  int
	px0, px1 int
	surface [4]float64
	base    RGB
	lx, ly, lz float64
	ambient, diffuse float64
	fast    bool
}

func (s *rectSpan) shadeRows(py0, py1 int) {
	sx1, sx2, sy1, sy2 := s.surface[0], s.surface[1], s.surface[2], s.surface[3]
	for py := py0; py < py1; py++ {
		pyF := float64(py) + 0.5
		ny := -(2*sy2*pyF + sy1)
		row := py * s.stride
		for px := s.px0; px < s.px1; px++ {
			pxF := float64(px) + 0.5
			nx := -(2*sx2*pxF + sx1)

			// Lambertian term against the implicit nz = 1 normal.
			dot := nx*s.lx + ny*s.ly + s.lz
			var cos float64
			if s.fast {
				cos = math.Max(dot, 0) * rsqrt(nx*nx+ny*ny+1)
			} else {
				cos = math.Max(dot/math.Sqrt(nx*nx+ny*ny+1), 0)
			}
			intensity := math.Pow(clamp(s.ambient+s.diffuse*cos, 0, 1), gamma)

			idx := (row + px) * 4
			s.buf[idx] = uint8(clamp(s.base.R*intensity, 0, 1) * 255)
			s.buf[idx+1] = uint8(clamp(s.base.G*intensity, 0, 1) * 255)
			s.buf[idx+2] = uint8(clamp(s.base.B*intensity, 0, 1) * 255)
			s.buf[idx+3] = 255
		}
	}
}

// shadeRowsParallel splits the rectangle's rows into bands. Bands never
// share pixels, so no synchronization beyond the final Wait is needed; the
// rectangle as a whole still completes before the caller moves on.
func (s *rectSpan) shadeRowsParallel(py0, py1, workers int) {
	rows := py1 - py0
	band := (rows + workers - 1) / workers
	var wg sync.WaitGroup
	for start := py0; start < py1; start += band {
		end := start + band
		if end > py1 {
			end = py1
		}
		wg.Add(1)
		go func(a, b int) {
			defer wg.Done()
			s.shadeRows(a, b)
		}(start, end)
	}
	wg.Wait()
}

// normalizeLight returns a unit light vector, substituting the default
// direction (1, 2, 10) normalized when the configured vector is
// degenerate.
func normalizeLight(l [3]float64) (float64, float64, float64) {
	n := math.Sqrt(l[0]*l[0] + l[1]*l[1] + l[2]*l[2])
	if n > 1e-6 {
		return l[0] / n, l[1] / n, l[2] / n
	}
	return 0.09759000729485331, 0.19518001458970663, 0.9759000729485332
}

// rsqrt is a one-Newton-step reciprocal square root, the classic bit-trick
// estimate. Good to ~0.2% over the normal lengths cushions produce.
func rsqrt(v float64) float64 {
	x := float32(v)
	i := math.Float32bits(x)
	i = 0x5f3759df - i>>1
	y := math.Float32frombits(i)
	y = y * (1.5 - 0.5*x*y*y)
	return float64(y)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
