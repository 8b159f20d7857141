// Package render turns a treemap layout into pixels.
//
// The cushion rasterizer shades every rectangle with the Lambertian model
// from van Wijk & van de Wetering's cushion treemaps: the rectangle's
// accumulated quadratic surface coefficients give a per-pixel normal, and a
// fixed directional light produces the pseudo-3D look. Base colors come
// from the extension category palette (files) or a muted name hash
// (directories).
package render

import (
	"fmt"
	"math"

	"github.com/spacelens/spacelens/pkg/vfs"
)

// ColorMode selects how file colors are derived.
type ColorMode int

const (
	// ModeCategory colors files purely by extension category.
	ModeCategory ColorMode = iota
	// ModeCategoryExtension adds a small per-extension hue jitter on top
	// of the category color, so .jpg and .png read as related but not
	// identical.
	ModeCategoryExtension
	// ModeExtensionHash hashes the extension straight to a hue.
	ModeExtensionHash
)

// String returns the short display name used in UI toggles.
func (m ColorMode) String() string {
	switch m {
	case ModeCategory:
		return "Category"
	case ModeCategoryExtension:
		return "Cat+Ext"
	case ModeExtensionHash:
		return "Ext Hash"
	default:
		return "?"
	}
}

// Name returns the stable identifier used in config files and flags.
func (m ColorMode) Name() string {
	switch m {
	case ModeCategory:
		return "category"
	case ModeCategoryExtension:
		return "category-extension"
	case ModeExtensionHash:
		return "extension-hash"
	default:
		return "unknown"
	}
}

// ParseColorMode maps a config/flag identifier to a ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "category":
		return ModeCategory, nil
	case "category-extension":
		return ModeCategoryExtension, nil
	case "extension-hash":
		return ModeExtensionHash, nil
	default:
		return ModeCategory, fmt.Errorf("unknown color mode %q (want category, category-extension or extension-hash)", s)
	}
}

// ColorSettings modulate the palette.
type ColorSettings struct {
	Mode ColorMode
	// Vibrancy multiplies saturation; clamped to [0.6, 2.0] when applied.
	Vibrancy float64
}

// DefaultColorSettings returns the documented defaults.
func DefaultColorSettings() ColorSettings {
	return ColorSettings{Mode: ModeCategoryExtension, Vibrancy: 1.20}
}

// RGB is a linear-range color with components in [0, 1].
type RGB struct {
	R, G, B float64
}

// categoryColor is the dark-mode palette: vibrant hues on a dark
// background, one per extension category.
func categoryColor(cat vfs.Category) RGB {
	switch cat {
	case vfs.CategoryImage:
		return hsvToRGB(190.0/360, 0.68, 0.92)
	case vfs.CategoryVideo:
		return hsvToRGB(15.0/360, 0.75, 0.90)
	case vfs.CategoryAudio:
		return hsvToRGB(280.0/360, 0.70, 0.88)
	case vfs.CategoryDocument:
		return hsvToRGB(220.0/360, 0.62, 0.90)
	case vfs.CategoryEbook:
		return hsvToRGB(165.0/360, 0.58, 0.82)
	case vfs.CategoryArchive:
		return hsvToRGB(40.0/360, 0.78, 0.92)
	case vfs.CategoryCode:
		return hsvToRGB(130.0/360, 0.66, 0.87)
	case vfs.CategoryExecutable:
		return hsvToRGB(0, 0.80, 0.82)
	case vfs.CategoryConfig:
		return hsvToRGB(55.0/360, 0.76, 0.92)
	case vfs.CategoryFont:
		return hsvToRGB(330.0/360, 0.55, 0.92)
	case vfs.CategoryInstaller:
		return hsvToRGB(30.0/360, 0.82, 0.90)
	case vfs.CategoryAsset3D:
		return hsvToRGB(95.0/360, 0.72, 0.86)
	case vfs.CategoryBackup:
		return hsvToRGB(25.0/360, 0.40, 0.70)
	case vfs.CategoryDatabase:
		return hsvToRGB(245.0/360, 0.45, 0.82)
	case vfs.CategoryDiskImage:
		return hsvToRGB(205.0/360, 0.64, 0.82)
	default:
		return RGB{0.50, 0.50, 0.55}
	}
}

// ExtensionColor returns the base color for a file with the given
// extension (no dot, any case).
func ExtensionColor(ext string, s ColorSettings) RGB {
	base := categoryColor(vfs.Categorize(ext))
	switch s.Mode {
	case ModeCategoryExtension:
		jitter := hash01(ext)*0.08 - 0.04
		base = shiftHSV(base, jitter, 1.0)
	case ModeExtensionHash:
		base = hsvToRGB(hash01(ext), 0.72, 0.84)
	}
	return applyVibrancy(base, s.Vibrancy)
}

// DirectoryColor returns the base color for a directory. Directories stay
// intentionally muted but vary by name hash, so hierarchy reads without
// every directory being the same gray. Deeper directories fade slightly.
func DirectoryColor(name string, depth int, s ColorSettings) RGB {
	h := fnv1a(name)
	r := 0.36 + float64(h&0xFF)/255*0.26
	g := 0.34 + float64((h>>8)&0xFF)/255*0.24
	b := 0.38 + float64((h>>16)&0xFF)/255*0.22
	fade := math.Min(float64(depth)*0.01, 0.10)
	c := RGB{
		R: math.Max(r-fade, 0.20),
		G: math.Max(g-fade, 0.20),
		B: math.Max(b-fade, 0.22),
	}
	return applyVibrancy(c, s.Vibrancy*0.85)
}

func applyVibrancy(c RGB, vibrancy float64) RGB {
	h, s, v := rgbToHSV(c)
	s = clamp(s*clamp(vibrancy, 0.6, 2.0), 0, 1)
	return hsvToRGB(h, s, v)
}

func shiftHSV(c RGB, hueDelta, satMul float64) RGB {
	h, s, v := rgbToHSV(c)
	h = mod1(h + hueDelta)
	s = clamp(s*satMul, 0, 1)
	return hsvToRGB(h, s, v)
}

func rgbToHSV(c RGB) (h, s, v float64) {
	max := math.Max(c.R, math.Max(c.G, c.B))
	min := math.Min(c.R, math.Min(c.G, c.B))
	d := max - min
	switch {
	case d <= 1e-6:
		h = 0
	case math.Abs(max-c.R) <= 1e-6:
		h = mod6((c.G-c.B)/d) / 6
	case math.Abs(max-c.G) <= 1e-6:
		h = ((c.B-c.R)/d + 2) / 6
	default:
		h = ((c.R-c.G)/d + 4) / 6
	}
	if max > 1e-6 {
		s = d / max
	}
	return h, s, max
}

func hsvToRGB(h, s, v float64) RGB {
	h6 := mod6(h * 6)
	i := int(math.Floor(h6))
	f := h6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	switch i {
	case 0:
		return RGB{v, t, p}
	case 1:
		return RGB{q, v, p}
	case 2:
		return RGB{p, v, t}
	case 3:
		return RGB{p, q, v}
	case 4:
		return RGB{t, p, v}
	default:
		return RGB{v, p, q}
	}
}

// fnv1a hashes a lowercase-insensitive name with FNV-1a 32.
func fnv1a(s string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

func hash01(s string) float64 {
	return float64(fnv1a(normalizeExt(s))>>8) / float64(math.MaxUint32>>8)
}

// normalizeExt strips a leading dot and lowercases ASCII.
func normalizeExt(ext string) string {
	if len(ext) > 0 && ext[0] == '.' {
		ext = ext[1:]
	}
	b := []byte(ext)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func clamp(v, lo, hi float64) float64 { return math.Min(math.Max(v, lo), hi) }

func mod1(v float64) float64 { return v - math.Floor(v) }

func mod6(v float64) float64 {
	m := math.Mod(v, 6)
	if m < 0 {
		m += 6
	}
	return m
}
