// Package treemap computes squarified cushion-treemap layouts.
//
// The package has two layers:
//
//   - Squarify: a pure geometric packer that splits a rectangle into
//     area-proportional sub-rectangles with near-square aspect ratios
//     (Bruls, Huizing, van Wijk 2000).
//   - Compute / ComputeIn / ComputeL: the tree-to-rectangle driver that
//     applies Squarify per directory, culls invisible detail, collapses
//     dominant single-child directory chains, and accumulates the cushion
//     surface coefficients used for shading (van Wijk & van de Wetering
//     1999).
//
// Both layers are pure, synchronous and allocation-light: one pass over an
// immutable vfs.Tree produces a fresh Layout, which fully replaces any
// previous one. Numeric degeneracy (zero-size parents, sub-pixel children,
// non-finite areas) is always handled by skipping, never by panicking.
package treemap

// Config holds the knobs for one layout pass. A Config is read-only while
// Compute runs; callers that want different settings run another pass.
type Config struct {
	// MinArea is the minimum screen area (px²) a rectangle must cover to be
	// emitted or recursed into.
	MinArea float64
	// MinSide is the minimum width and height (px) of an emitted rectangle.
	MinSide float64
	// RecurseMinSide is the minimum width and height a directory rectangle
	// needs before its children are laid out.
	RecurseMinSide float64

	// Padding is the base gap between sibling rectangles, shrinking by
	// PaddingFalloff per nesting level.
	Padding        float64
	PaddingFalloff float64

	// FrameWidth and HeaderHeight reserve a border and a title band inside
	// directory rectangles (depth > 0), both decaying by FrameFalloff.
	FrameWidth   float64
	HeaderHeight float64
	FrameFalloff float64

	// MaxDepth bounds recursion.
	MaxDepth int

	// CoverageTarget is the fraction of a directory's area that kept
	// children must cover before the small-child tail is truncated.
	CoverageTarget float64
	// MaxChildren caps the rectangles rendered per directory.
	MaxChildren int

	// CushionHeight is the ridge height added by a depth-0 rectangle;
	// each level multiplies it by CushionFalloff.
	CushionHeight  float64
	CushionFalloff float64

	// DominantChildFrac and SiblingResidueFrac control chain collapsing:
	// a directory whose single child directory holds at least
	// DominantChildFrac of its bytes, with all siblings together at most
	// SiblingResidueFrac, is skipped in favor of that child. Both values
	// are empirical; tune them against real directory-size distributions
	// rather than treating them as derived.
	DominantChildFrac  float64
	SiblingResidueFrac float64
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MinArea:            49,
		MinSide:            0.5,
		RecurseMinSide:     4,
		Padding:            1.5,
		PaddingFalloff:     0.75,
		FrameWidth:         1,
		HeaderHeight:       14,
		FrameFalloff:       0.85,
		MaxDepth:           64,
		CoverageTarget:     0.995,
		MaxChildren:        1200,
		CushionHeight:      0.8,
		CushionFalloff:     0.75,
		DominantChildFrac:  0.98,
		SiblingResidueFrac: 0.02,
	}
}
