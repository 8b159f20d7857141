package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/spacelens/spacelens/pkg/scan"
	"github.com/spacelens/spacelens/pkg/snapshot"
	"github.com/spacelens/spacelens/pkg/vfs"
)

// scanCommand creates the scan command: walk a path and report where the
// bytes are, optionally persisting the result as a snapshot.
func (c *CLI) scanCommand() *cobra.Command {
	var (
		top  int
		save bool
	)

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a directory and report its largest entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]

			p := newProgress(c.Logger)
			entries, err := scan.Walk(cmd.Context(), root, c.Logger)
			if err != nil {
				return err
			}
			tree := scan.Build(entries)
			p.done(fmt.Sprintf("Scanned %d entries", len(entries)))

			printScanSummary(tree, top)

			if save {
				cfg, err := c.loadConfig()
				if err != nil {
					return err
				}
				store, err := newSnapshotStore(cfg)
				if err != nil {
					return err
				}
				snap := snapshot.New(root, entries)
				if err := store.Put(cmd.Context(), snap); err != nil {
					return err
				}
				printSuccess("Saved snapshot %s", snap.ID)
				printDetail("Render it later: spacelens render --snapshot %s", snap.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "number of largest children to list")
	cmd.Flags().BoolVar(&save, "save", false, "persist the scan as a snapshot")

	return cmd
}

// printScanSummary lists the root's largest children with size bars.
func printScanSummary(tree *vfs.Tree, top int) {
	root := tree.Get(tree.Root)
	fmt.Println(StyleTitle.Render(root.Name) + " " + StyleNumber.Render(humanBytes(root.Size)))

	kids := tree.ChildIDs(tree.Root)
	sort.SliceStable(kids, func(i, j int) bool {
		return tree.Get(kids[i]).Size > tree.Get(kids[j]).Size
	})
	if len(kids) > top {
		kids = kids[:top]
	}

	for _, id := range kids {
		n := tree.Get(id)
		share := 0.0
		if root.Size > 0 {
			share = float64(n.Size) / float64(root.Size)
		}
		name := n.Name
		if n.IsDir {
			name += "/"
		}
		fmt.Printf("  %s %s %s\n",
			StyleDim.Render(sizeBar(share)),
			StyleValue.Render(fmt.Sprintf("%-32s", name)),
			StyleNumber.Render(humanBytes(n.Size)))
	}
}

// sizeBar renders a ten-cell proportional bar.
func sizeBar(share float64) string {
	const cells = 10
	filled := int(share*cells + 0.5)
	if filled > cells {
		filled = cells
	}
	bar := ""
	for i := 0; i < cells; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}
