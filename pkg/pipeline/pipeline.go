// Package pipeline runs the scan → layout → render chain with caching.
//
// CLI commands and the HTTP server both drive rendering through the same
// Runner, so caching, instrumentation and logging behave identically at
// every entry point.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Scan: walk a filesystem root (or load a snapshot) into a size tree
//  2. Layout: compute the squarified cushion-treemap rectangles
//  3. Render: rasterize the layout and encode it as PNG
//
// Each stage is cached independently, keyed by a content hash of its
// inputs: the scanned entry list keys the layout, the layout bytes key the
// image. Changing a knob re-runs only the stages it affects.
//
// # Usage
//
//	runner := pipeline.NewRunner(fileCache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Root:   "/data",
//	    Width:  1920,
//	    Height: 1080,
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("out.png", result.PNG, 0o644)
package pipeline

import (
	"encoding/json"
	"time"

	"github.com/spacelens/spacelens/pkg/render"
	"github.com/spacelens/spacelens/pkg/scan"
	"github.com/spacelens/spacelens/pkg/snapshot"
	"github.com/spacelens/spacelens/pkg/treemap"
	"github.com/spacelens/spacelens/pkg/vfs"
	"github.com/spacelens/spacelens/pkg/xerrors"
)

// Default viewport dimensions shared by CLI and server.
const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
)

// Options configure one pipeline run.
type Options struct {
	// Root is the filesystem path to scan. Ignored when Snapshot is set.
	Root string

	// Snapshot renders a previously persisted scan instead of walking the
	// filesystem.
	Snapshot *snapshot.Snapshot

	// Width and Height are the viewport in pixels; zero means the default.
	Width  int
	Height int

	// Layout, Cushion and Colors fall back to the documented defaults when
	// left zero-valued.
	Layout  treemap.Config
	Cushion render.CushionConfig
	Colors  render.ColorSettings

	// Refresh bypasses the scanned-tree cache.
	Refresh bool
}

// validateAndSetDefaults normalizes the options in place.
func (o *Options) validateAndSetDefaults() error {
	if o.Root == "" && o.Snapshot == nil {
		return xerrors.New(xerrors.ErrCodeInvalidPath, "no root path or snapshot given")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Layout.MaxDepth == 0 {
		o.Layout = treemap.DefaultConfig()
	}
	if o.Cushion.Ambient == 0 && o.Cushion.Diffuse == 0 {
		o.Cushion = render.DefaultCushionConfig()
	}
	if o.Colors.Vibrancy == 0 {
		o.Colors = render.DefaultColorSettings()
	}
	return nil
}

// Stats holds per-stage timings and sizes.
type Stats struct {
	ScanTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
	EntryCount int
	RectCount  int
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	TreeHit   bool
	LayoutHit bool
	ImageHit  bool
}

// Result is the output of a pipeline run.
type Result struct {
	Tree   *vfs.Tree
	Layout *treemap.Layout
	PNG    []byte

	// TreeHash and LayoutHash are the content hashes chaining the stages.
	TreeHash   string
	LayoutHash string

	Stats     Stats
	CacheInfo CacheInfo
}

// marshalEntries encodes a scanned entry list for caching.
func marshalEntries(entries []scan.RawEntry) ([]byte, error) {
	return json.Marshal(entries)
}

func unmarshalEntries(data []byte) ([]scan.RawEntry, error) {
	var entries []scan.RawEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// marshalLayout encodes a layout for caching. Only the rectangle slice is
// stored; the node index is rebuilt on load.
func marshalLayout(l *treemap.Layout) ([]byte, error) {
	return json.Marshal(l.Rects)
}

func unmarshalLayout(data []byte) (*treemap.Layout, error) {
	var rects []treemap.LayoutRect
	if err := json.Unmarshal(data, &rects); err != nil {
		return nil, err
	}
	l := &treemap.Layout{
		Rects:      rects,
		NodeToRect: make(map[vfs.NodeID]int, len(rects)),
	}
	for i, r := range rects {
		l.NodeToRect[r.Node] = i
	}
	return l, nil
}
