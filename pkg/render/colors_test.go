package render

import (
	"math"
	"testing"
)

func TestExtensionColorDeterministic(t *testing.T) {
	s := DefaultColorSettings()
	a := ExtensionColor("jpg", s)
	b := ExtensionColor("jpg", s)
	if a != b {
		t.Error("same extension produced different colors")
	}
}

func TestExtensionColorModesDiffer(t *testing.T) {
	cat := ExtensionColor("jpg", ColorSettings{Mode: ModeCategory, Vibrancy: 1})
	hash := ExtensionColor("jpg", ColorSettings{Mode: ModeExtensionHash, Vibrancy: 1})
	if cat == hash {
		t.Error("category and hash modes produced identical colors")
	}

	// Same category, different extensions: jittered apart in
	// CategoryExtension mode, identical in Category mode.
	s := ColorSettings{Mode: ModeCategoryExtension, Vibrancy: 1}
	if ExtensionColor("jpg", s) == ExtensionColor("png", s) {
		t.Error("extension jitter did not separate jpg from png")
	}
	plain := ColorSettings{Mode: ModeCategory, Vibrancy: 1}
	if ExtensionColor("jpg", plain) != ExtensionColor("png", plain) {
		t.Error("category mode should ignore the specific extension")
	}
}

func TestColorComponentsInRange(t *testing.T) {
	exts := []string{"jpg", "mp4", "mp3", "pdf", "zip", "go", "exe", "ttf", "", "weird"}
	for _, ext := range exts {
		for _, vib := range []float64{0.0, 0.6, 1.2, 2.0, 5.0} {
			c := ExtensionColor(ext, ColorSettings{Mode: ModeCategoryExtension, Vibrancy: vib})
			for _, v := range []float64{c.R, c.G, c.B} {
				if v < 0 || v > 1 || math.IsNaN(v) {
					t.Fatalf("ExtensionColor(%q, vib=%g) out of range: %+v", ext, vib, c)
				}
			}
		}
	}
}

func TestDirectoryColorVariesByNameAndFadesByDepth(t *testing.T) {
	s := DefaultColorSettings()
	a := DirectoryColor("node_modules", 1, s)
	b := DirectoryColor("Photos", 1, s)
	if a == b {
		t.Error("different directory names produced identical colors")
	}

	shallow := DirectoryColor("src", 0, s)
	deep := DirectoryColor("src", 10, s)
	if deep.R >= shallow.R && deep.G >= shallow.G && deep.B >= shallow.B {
		t.Error("deep directory is not darker than shallow one")
	}
}

func TestHSVRoundTrip(t *testing.T) {
	for _, c := range []RGB{{1, 0, 0}, {0.2, 0.7, 0.4}, {0.5, 0.5, 0.55}, {0, 0, 0}} {
		h, s, v := rgbToHSV(c)
		back := hsvToRGB(h, s, v)
		if math.Abs(back.R-c.R) > 1e-6 || math.Abs(back.G-c.G) > 1e-6 || math.Abs(back.B-c.B) > 1e-6 {
			t.Errorf("round trip %+v -> (%g,%g,%g) -> %+v", c, h, s, v, back)
		}
	}
}
