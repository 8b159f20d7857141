package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/spacelens/spacelens/pkg/cache"
	"github.com/spacelens/spacelens/pkg/observability"
	"github.com/spacelens/spacelens/pkg/render"
	"github.com/spacelens/spacelens/pkg/scan"
	"github.com/spacelens/spacelens/pkg/treemap"
	"github.com/spacelens/spacelens/pkg/vfs"
	"github.com/spacelens/spacelens/pkg/xerrors"
)

// Runner executes the pipeline with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete scan → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.validateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: scan (or snapshot)
	scanStart := time.Now()
	entries, treeHit, err := r.entriesWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrCodeInvalidPath, err, "scan %s", opts.Root)
	}
	entryData, err := marshalEntries(entries)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrCodeInternal, err, "encode scan entries")
	}
	result.Tree = scan.Build(entries)
	result.TreeHash = cache.Hash(entryData)
	result.Stats.ScanTime = time.Since(scanStart)
	result.Stats.EntryCount = len(entries)
	result.CacheInfo.TreeHit = treeHit

	r.Logger.Info("scanned tree",
		"entries", len(entries),
		"bytes", result.Tree.Get(result.Tree.Root).Size,
		"cached", treeHit,
		"duration", result.Stats.ScanTime)

	// Stage 2: layout
	layoutStart := time.Now()
	layout, layoutHit := r.layoutWithCacheInfo(ctx, result.Tree, result.TreeHash, opts)
	layoutData, err := marshalLayout(layout)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrCodeInternal, err, "encode layout")
	}
	result.Layout = layout
	result.LayoutHash = cache.Hash(layoutData)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.RectCount = len(layout.Rects)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"rects", len(layout.Rects),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: render
	renderStart := time.Now()
	png, imageHit, err := r.renderWithCacheInfo(ctx, layout, result.LayoutHash, result.Tree, opts)
	if err != nil {
		return nil, err
	}
	result.PNG = png
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.ImageHit = imageHit

	r.Logger.Info("rendered image",
		"width", opts.Width,
		"height", opts.Height,
		"bytes", len(png),
		"cached", imageHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// entriesWithCacheInfo produces the flat entry list, from the snapshot,
// the cache, or a fresh filesystem walk.
func (r *Runner) entriesWithCacheInfo(ctx context.Context, opts Options) ([]scan.RawEntry, bool, error) {
	if opts.Snapshot != nil {
		return opts.Snapshot.Entries, false, nil
	}

	key := r.Keyer.TreeKey(opts.Root)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if entries, err := unmarshalEntries(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "tree")
				return entries, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "tree")
	}

	observability.Pipeline().OnScanStart(ctx, opts.Root)
	start := time.Now()
	entries, err := scan.Walk(ctx, opts.Root, r.Logger)
	observability.Pipeline().OnScanComplete(ctx, opts.Root, len(entries), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := marshalEntries(entries); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLTree)
		observability.Cache().OnCacheSet(ctx, "tree", len(data))
	}
	return entries, false, nil
}

// layoutWithCacheInfo computes the layout, from cache when possible.
// Layout computation cannot fail; degenerate input yields an empty layout.
func (r *Runner) layoutWithCacheInfo(ctx context.Context, tree *vfs.Tree, treeHash string, opts Options) (*treemap.Layout, bool) {
	cfgData, _ := json.Marshal(opts.Layout)
	key := r.Keyer.LayoutKey(treeHash, cache.LayoutKeyOpts{
		Width:      opts.Width,
		Height:     opts.Height,
		ConfigHash: cache.Hash(cfgData),
	})

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		if layout, err := unmarshalLayout(data); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return layout, true
		}
		// Corrupt cached layout; fall through to recompute.
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	observability.Pipeline().OnLayoutStart(ctx, tree.Len())
	start := time.Now()
	layout := treemap.Compute(tree, tree.Root, float64(opts.Width), float64(opts.Height), opts.Layout)
	observability.Pipeline().OnLayoutComplete(ctx, len(layout.Rects), time.Since(start), nil)

	if data, err := marshalLayout(layout); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}
	return layout, false
}

// renderWithCacheInfo rasterizes and PNG-encodes the layout, from cache
// when possible.
func (r *Runner) renderWithCacheInfo(ctx context.Context, layout *treemap.Layout, layoutHash string, tree *vfs.Tree, opts Options) ([]byte, bool, error) {
	shadeData, _ := json.Marshal(opts.Cushion)
	key := r.Keyer.ImageKey(layoutHash, cache.ImageKeyOpts{
		Width:     opts.Width,
		Height:    opts.Height,
		ColorMode: opts.Colors.Mode.Name(),
		Vibrancy:  opts.Colors.Vibrancy,
		Fast:      opts.Cushion.FastLighting,
		ShadeHash: cache.Hash(shadeData),
	})

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "image")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "image")

	observability.Pipeline().OnRenderStart(ctx, opts.Width, opts.Height)
	start := time.Now()
	buf := render.Rasterize(opts.Width, opts.Height, layout.Rects, tree, opts.Cushion, opts.Colors)
	png, err := render.EncodePNG(opts.Width, opts.Height, buf)
	observability.Pipeline().OnRenderComplete(ctx, opts.Width, opts.Height, time.Since(start), err)
	if err != nil {
		return nil, false, xerrors.Wrap(xerrors.ErrCodeInternal, err, "encode png")
	}

	_ = r.Cache.Set(ctx, key, png, cache.TTLImage)
	observability.Cache().OnCacheSet(ctx, "image", len(png))
	return png, false, nil
}
