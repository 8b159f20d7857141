package treemap

import "math"

// Rect is an axis-aligned rectangle in screen space.
type Rect struct {
	X, Y, W, H float64
}

// Area returns W*H.
func (r Rect) Area() float64 { return r.W * r.H }

// Contains reports whether the point (px, py) lies inside the rectangle.
func (r Rect) Contains(px, py float64) bool {
	return px >= r.X && px < r.X+r.W && py >= r.Y && py < r.Y+r.H
}

const degenerate = 1e-9

// Squarify packs areas into the target rectangle, producing one
// sub-rectangle per area with near-square aspect ratios.
//
// Preconditions: areas must be sorted descending and strictly positive and
// finite; Squarify does not re-sort. Given those, the output has exactly
// one rectangle per input area and the rectangles tile the target exactly:
// each row's last item and the final row are stretched to absorb
// floating-point slack, so no hairline gaps appear between rows.
//
// A non-positive target yields an empty result; zero or non-finite
// intermediate values are skipped rather than emitted.
func Squarify(areas []float64, x, y, w, h float64) []Rect {
	out := make([]Rect, 0, len(areas))
	if len(areas) == 0 || w <= 0 || h <= 0 {
		return out
	}

	i := 0
	for i < len(areas) {
		if w <= degenerate || h <= degenerate {
			break
		}
		short := math.Min(w, h)

		// Grow the row while adding the next item does not worsen the
		// worst aspect ratio in the row.
		rowSum := areas[i]
		rowMax, rowMin := areas[i], areas[i]
		worst := worstAspect(rowMax, rowMin, rowSum, short)
		j := i + 1
		for j < len(areas) {
			a := areas[j]
			sum := rowSum + a
			max := math.Max(rowMax, a)
			min := math.Min(rowMin, a)
			next := worstAspect(max, min, sum, short)
			if next > worst {
				break
			}
			rowSum, rowMax, rowMin, worst = sum, max, min, next
			j++
		}

		thickness := rowSum / short
		if !isUsable(thickness) {
			// Row of zero-area items; nothing to place.
			i = j
			continue
		}

		// Rows span the shorter remaining side. The final row absorbs
		// whatever the long axis has left.
		horizontal := w <= h
		lastRow := j == len(areas)
		if horizontal {
			if lastRow || thickness > h {
				thickness = h
			}
			out = layOutRow(out, areas[i:j], rowSum, x, y, w, thickness, true)
			y += thickness
			h = math.Max(h-thickness, 0)
		} else {
			if lastRow || thickness > w {
				thickness = w
			}
			out = layOutRow(out, areas[i:j], rowSum, x, y, thickness, h, false)
			x += thickness
			w = math.Max(w-thickness, 0)
		}
		i = j
	}
	return out
}

// layOutRow places one row of items inside the strip. For a horizontal
// strip the items advance along x; vertical strips advance along y. The
// last item is stretched to the strip's end instead of using its computed
// length, so rounding never leaves a gap.
func layOutRow(out []Rect, row []float64, rowSum, x, y, w, h float64, horizontal bool) []Rect {
	extent := w
	if !horizontal {
		extent = h
	}
	if rowSum <= 0 || extent <= 0 {
		return out
	}

	offset := 0.0
	for k, area := range row {
		length := area / rowSum * extent
		if k == len(row)-1 {
			length = extent - offset
		}
		if !isUsable(length) {
			continue
		}
		if horizontal {
			out = append(out, Rect{X: x + offset, Y: y, W: length, H: h})
		} else {
			out = append(out, Rect{X: x, Y: y + offset, W: w, H: length})
		}
		offset += length
	}
	return out
}

// worstAspect is the squarify scoring function: the worst aspect ratio a
// row with the given extremes would have if laid out against side.
func worstAspect(maxArea, minArea, sum, side float64) float64 {
	if sum <= 0 || side <= 0 || minArea <= 0 {
		return math.Inf(1)
	}
	s2 := side * side
	sum2 := sum * sum
	return math.Max(s2*maxArea/sum2, sum2/(s2*minArea))
}

func isUsable(v float64) bool {
	return v > degenerate && !math.IsInf(v, 0) && !math.IsNaN(v)
}
