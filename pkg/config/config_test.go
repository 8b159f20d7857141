package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spacelens/spacelens/pkg/render"
	"github.com/spacelens/spacelens/pkg/treemap"
	"github.com/spacelens/spacelens/pkg/xerrors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spacelens.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TreemapConfig() != treemap.DefaultConfig() {
		t.Error("missing file should yield default layout config")
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("default server addr = %q", cfg.Server.Addr)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[layout]
max_depth = 8

[colors]
mode = "extension-hash"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.MaxDepth != 8 {
		t.Errorf("max_depth = %d, want 8", cfg.Layout.MaxDepth)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Layout.Padding != treemap.DefaultConfig().Padding {
		t.Errorf("padding = %v, want default", cfg.Layout.Padding)
	}
	if got := cfg.ColorSettings().Mode; got != render.ModeExtensionHash {
		t.Errorf("color mode = %v, want ModeExtensionHash", got)
	}
	if cfg.ColorSettings().Vibrancy != render.DefaultColorSettings().Vibrancy {
		t.Error("vibrancy should keep its default")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[layout]
maxdepth = 8
`)
	if _, err := Load(path); !xerrors.HasCode(err, xerrors.ErrCodeInvalidConfig) {
		t.Errorf("unknown key: err = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"bad color mode":   "[colors]\nmode = \"rainbow\"\n",
		"bad cache":        "[cache]\nbackend = \"memcached\"\n",
		"bad snapshots":    "[server]\nsnapshot_backend = \"s3\"\n",
		"bad depth":        "[layout]\nmax_depth = 0\n",
		"malformed syntax": "[layout\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); !xerrors.HasCode(err, xerrors.ErrCodeInvalidConfig) {
			t.Errorf("%s: err = %v, want INVALID_CONFIG", name, err)
		}
	}
}

func TestCushionConversion(t *testing.T) {
	path := writeConfig(t, `
[cushion]
ambient = 0.3
light = [0.0, 1.0, 5.0]
fast_lighting = true
workers = 4
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cc := cfg.CushionConfig()
	if cc.Ambient != 0.3 || !cc.FastLighting || cc.Workers != 4 {
		t.Errorf("cushion config = %+v", cc)
	}
	if cc.Light != [3]float64{0, 1, 5} {
		t.Errorf("light = %v", cc.Light)
	}
	// Diffuse was not set and keeps its default.
	if cc.Diffuse != render.DefaultCushionConfig().Diffuse {
		t.Errorf("diffuse = %v, want default", cc.Diffuse)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("default cache backend = %q", cfg.Cache.Backend)
	}
}
