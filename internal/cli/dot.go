package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/spf13/cobra"

	"github.com/spacelens/spacelens/pkg/scan"
	"github.com/spacelens/spacelens/pkg/vfs"
)

// dotCommand creates the dot command: export a scanned tree as a Graphviz
// diagram. Meant for debugging aggregation and chain collapsing, not for
// production rendering.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		output   string
		maxDepth int
		svg      bool
	)

	cmd := &cobra.Command{
		Use:   "dot [path]",
		Short: "Export a directory tree as a Graphviz diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := scan.Scan(cmd.Context(), args[0], c.Logger)
			if err != nil {
				return err
			}

			dot := treeToDOT(tree, maxDepth)
			data := []byte(dot)
			if svg {
				if data, err = renderDOTSVG(cmd.Context(), dot); err != nil {
					return err
				}
			}

			if output == "" || output == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Wrote %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVar(&maxDepth, "depth", 3, "maximum tree depth to export")
	cmd.Flags().BoolVar(&svg, "svg", false, "render to SVG instead of emitting DOT")

	return cmd
}

// treeToDOT emits the directory structure down to maxDepth, labeling each
// node with its aggregated size.
func treeToDOT(t *vfs.Tree, maxDepth int) string {
	var buf bytes.Buffer
	buf.WriteString("digraph spacelens {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	var walk func(id vfs.NodeID, depth int)
	walk = func(id vfs.NodeID, depth int) {
		n := t.Get(id)
		label := fmt.Sprintf("%s\n%s", n.Name, humanBytes(n.Size))
		attrs := []string{fmt.Sprintf("label=%q", label)}
		if n.IsDir {
			attrs = append(attrs, "fillcolor=lightblue")
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", id, strings.Join(attrs, ", "))

		if !n.IsDir || depth >= maxDepth {
			return
		}
		for child := range t.Children(id) {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", id, child)
			walk(child, depth+1)
		}
	}
	walk(t.Root, 0)

	buf.WriteString("}\n")
	return buf.String()
}

// renderDOTSVG renders DOT to SVG in-process.
func renderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
