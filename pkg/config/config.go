// Package config loads spacelens settings from a TOML file.
//
// Every key is optional; a missing file or a partial file yields the
// documented defaults for whatever is absent. Unknown keys are rejected so
// typos surface as errors instead of silently ignored settings.
package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/spacelens/spacelens/pkg/render"
	"github.com/spacelens/spacelens/pkg/treemap"
	"github.com/spacelens/spacelens/pkg/xerrors"
)

// Config is the full settings file.
type Config struct {
	Layout    Layout    `toml:"layout"`
	Cushion   Cushion   `toml:"cushion"`
	Colors    Colors    `toml:"colors"`
	Cache     Cache     `toml:"cache"`
	Server    Server    `toml:"server"`
	Snapshots Snapshots `toml:"snapshots"`
}

// Layout mirrors treemap.Config for the [layout] section.
type Layout struct {
	MinArea            float64 `toml:"min_area"`
	MinSide            float64 `toml:"min_side"`
	RecurseMinSide     float64 `toml:"recurse_min_side"`
	Padding            float64 `toml:"padding"`
	PaddingFalloff     float64 `toml:"padding_falloff"`
	FrameWidth         float64 `toml:"frame_width"`
	HeaderHeight       float64 `toml:"header_height"`
	FrameFalloff       float64 `toml:"frame_falloff"`
	MaxDepth           int     `toml:"max_depth"`
	CoverageTarget     float64 `toml:"coverage_target"`
	MaxChildren        int     `toml:"max_children"`
	CushionHeight      float64 `toml:"cushion_height"`
	CushionFalloff     float64 `toml:"cushion_falloff"`
	DominantChildFrac  float64 `toml:"dominant_child_frac"`
	SiblingResidueFrac float64 `toml:"sibling_residue_frac"`
}

// Cushion mirrors render.CushionConfig for the [cushion] section.
type Cushion struct {
	Ambient      float64    `toml:"ambient"`
	Diffuse      float64    `toml:"diffuse"`
	Light        [3]float64 `toml:"light"`
	FastLighting bool       `toml:"fast_lighting"`
	Workers      int        `toml:"workers"`
}

// Colors mirrors render.ColorSettings for the [colors] section.
type Colors struct {
	// Mode is one of "category", "category-extension", "extension-hash".
	Mode     string  `toml:"mode"`
	Vibrancy float64 `toml:"vibrancy"`
}

// Cache configures the [cache] section.
type Cache struct {
	// Backend is "file", "redis" or "none".
	Backend string `toml:"backend"`
	// Dir is the file backend's directory; empty means the per-user
	// default cache directory.
	Dir string `toml:"dir"`
	// RedisURL is the redis backend's connection URL.
	RedisURL string `toml:"redis_url"`
}

// Server configures the [server] section.
type Server struct {
	Addr string `toml:"addr"`
	// SnapshotBackend is "file" or "mongo".
	SnapshotBackend string `toml:"snapshot_backend"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
}

// Snapshots configures the [snapshots] section.
type Snapshots struct {
	// Dir holds snapshot JSON files; empty means the per-user default
	// data directory.
	Dir string `toml:"dir"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	lc := treemap.DefaultConfig()
	cc := render.DefaultCushionConfig()
	cs := render.DefaultColorSettings()
	return Config{
		Layout: Layout{
			MinArea:            lc.MinArea,
			MinSide:            lc.MinSide,
			RecurseMinSide:     lc.RecurseMinSide,
			Padding:            lc.Padding,
			PaddingFalloff:     lc.PaddingFalloff,
			FrameWidth:         lc.FrameWidth,
			HeaderHeight:       lc.HeaderHeight,
			FrameFalloff:       lc.FrameFalloff,
			MaxDepth:           lc.MaxDepth,
			CoverageTarget:     lc.CoverageTarget,
			MaxChildren:        lc.MaxChildren,
			CushionHeight:      lc.CushionHeight,
			CushionFalloff:     lc.CushionFalloff,
			DominantChildFrac:  lc.DominantChildFrac,
			SiblingResidueFrac: lc.SiblingResidueFrac,
		},
		Cushion: Cushion{
			Ambient: cc.Ambient,
			Diffuse: cc.Diffuse,
			Light:   cc.Light,
		},
		Colors: Colors{
			Mode:     cs.Mode.Name(),
			Vibrancy: cs.Vibrancy,
		},
		Cache: Cache{
			Backend:  "file",
			RedisURL: "redis://localhost:6379/0",
		},
		Server: Server{
			Addr:            ":8080",
			SnapshotBackend: "file",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "spacelens",
		},
	}
}

// Load reads the TOML file at path, layered over Default. A missing file
// is not an error; a malformed file or an unknown key is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, xerrors.Wrap(xerrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, xerrors.New(xerrors.ErrCodeInvalidConfig,
			"unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := render.ParseColorMode(c.Colors.Mode); err != nil {
		return xerrors.Wrap(xerrors.ErrCodeInvalidConfig, err, "colors.mode")
	}
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return xerrors.New(xerrors.ErrCodeInvalidConfig,
			"cache.backend %q (want file, redis or none)", c.Cache.Backend)
	}
	switch c.Server.SnapshotBackend {
	case "file", "mongo":
	default:
		return xerrors.New(xerrors.ErrCodeInvalidConfig,
			"server.snapshot_backend %q (want file or mongo)", c.Server.SnapshotBackend)
	}
	if c.Layout.MaxDepth < 1 {
		return xerrors.New(xerrors.ErrCodeInvalidConfig, "layout.max_depth must be >= 1")
	}
	return nil
}

// TreemapConfig converts the [layout] section to the engine's config.
func (c *Config) TreemapConfig() treemap.Config {
	l := c.Layout
	return treemap.Config{
		MinArea:            l.MinArea,
		MinSide:            l.MinSide,
		RecurseMinSide:     l.RecurseMinSide,
		Padding:            l.Padding,
		PaddingFalloff:     l.PaddingFalloff,
		FrameWidth:         l.FrameWidth,
		HeaderHeight:       l.HeaderHeight,
		FrameFalloff:       l.FrameFalloff,
		MaxDepth:           l.MaxDepth,
		CoverageTarget:     l.CoverageTarget,
		MaxChildren:        l.MaxChildren,
		CushionHeight:      l.CushionHeight,
		CushionFalloff:     l.CushionFalloff,
		DominantChildFrac:  l.DominantChildFrac,
		SiblingResidueFrac: l.SiblingResidueFrac,
	}
}

// CushionConfig converts the [cushion] section to the rasterizer's config.
func (c *Config) CushionConfig() render.CushionConfig {
	return render.CushionConfig{
		Ambient:      c.Cushion.Ambient,
		Diffuse:      c.Cushion.Diffuse,
		Light:        c.Cushion.Light,
		FastLighting: c.Cushion.FastLighting,
		Workers:      c.Cushion.Workers,
	}
}

// ColorSettings converts the [colors] section to the palette settings.
// Load validated the mode, so the conversion cannot fail afterwards.
func (c *Config) ColorSettings() render.ColorSettings {
	mode, err := render.ParseColorMode(c.Colors.Mode)
	if err != nil {
		mode = render.DefaultColorSettings().Mode
	}
	return render.ColorSettings{Mode: mode, Vibrancy: c.Colors.Vibrancy}
}
