package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spacelens/spacelens/pkg/pipeline"
	"github.com/spacelens/spacelens/pkg/render"
	"github.com/spacelens/spacelens/pkg/xerrors"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string // output PNG path
	snapshotID string // render a stored snapshot instead of scanning
	width      int    // viewport width in pixels
	height     int    // viewport height in pixels
	colorMode  string // category, category-extension or extension-hash
	vibrancy   float64
	fast       bool // reciprocal-sqrt lighting approximation
	noCache    bool
	refresh    bool // rescan even if a cached tree exists
}

// renderCommand creates the render command: scan (or load a snapshot) and
// write the treemap as a PNG.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		output: "treemap.png",
	}

	cmd := &cobra.Command{
		Use:   "render [path]",
		Short: "Render a directory as a cushion-treemap PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && opts.snapshotID == "" {
				return xerrors.New(xerrors.ErrCodeInvalidPath, "need a path argument or --snapshot")
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cfg, opts.noCache)
			if err != nil {
				return err
			}

			pOpts := pipelineOptions(cfg)
			pOpts.Width = opts.width
			pOpts.Height = opts.height
			pOpts.Refresh = opts.refresh
			if len(args) == 1 {
				pOpts.Root = args[0]
			}
			if opts.snapshotID != "" {
				store, err := newSnapshotStore(cfg)
				if err != nil {
					return err
				}
				snap, err := store.Get(cmd.Context(), opts.snapshotID)
				if err != nil {
					return err
				}
				pOpts.Snapshot = snap
			}
			if err := applyRenderFlags(&pOpts, &opts); err != nil {
				return err
			}

			res, err := runner.Execute(cmd.Context(), pOpts)
			if err != nil {
				return err
			}

			if err := os.WriteFile(opts.output, res.PNG, 0o644); err != nil {
				return err
			}
			printSuccess("Rendered %s", opts.output)
			printStats(res.Stats.EntryCount, res.Stats.RectCount, res.CacheInfo.ImageHit)
			printFile(opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output PNG file")
	cmd.Flags().StringVar(&opts.snapshotID, "snapshot", "", "render a stored snapshot instead of scanning")
	cmd.Flags().IntVar(&opts.width, "width", pipeline.DefaultWidth, "viewport width")
	cmd.Flags().IntVar(&opts.height, "height", pipeline.DefaultHeight, "viewport height")
	cmd.Flags().StringVar(&opts.colorMode, "colors", "", "color mode: category, category-extension, extension-hash")
	cmd.Flags().Float64Var(&opts.vibrancy, "vibrancy", 0, "saturation multiplier (0.6-2.0)")
	cmd.Flags().BoolVar(&opts.fast, "fast", false, "use fast approximate lighting")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "rescan even if a cached tree exists")

	return cmd
}

// applyRenderFlags overlays explicit flags on the config-derived options.
func applyRenderFlags(pOpts *pipeline.Options, opts *renderOpts) error {
	if opts.colorMode != "" {
		mode, err := render.ParseColorMode(strings.ToLower(opts.colorMode))
		if err != nil {
			return err
		}
		pOpts.Colors.Mode = mode
	}
	if opts.vibrancy != 0 {
		pOpts.Colors.Vibrancy = opts.vibrancy
	}
	if opts.fast {
		pOpts.Cushion.FastLighting = true
	}
	return nil
}
