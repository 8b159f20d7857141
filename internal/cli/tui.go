package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/spacelens/spacelens/pkg/scan"
	"github.com/spacelens/spacelens/pkg/vfs"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command: scan a path, then walk the
// size tree interactively in the terminal.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [path]",
		Short: "Browse a directory's disk usage interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newProgress(c.Logger)
			tree, err := scan.Scan(cmd.Context(), args[0], c.Logger)
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("Scanned %d entries", tree.Len()))

			model := NewBrowseModel(tree)
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

// =============================================================================
// BrowseModel - Interactive tree navigation
// =============================================================================

// BrowseModel is the bubbletea model for walking the size tree.
type BrowseModel struct {
	Tree    *vfs.Tree
	Current vfs.NodeID
	Kids    []vfs.NodeID
	Cursor  int
	Height  int
	Offset  int
}

// NewBrowseModel creates a browse model rooted at the tree's root.
func NewBrowseModel(t *vfs.Tree) BrowseModel {
	m := BrowseModel{Tree: t, Current: t.Root, Height: 20}
	m.reload()
	return m
}

// reload recomputes the child list of the current directory.
func (m *BrowseModel) reload() {
	m.Kids = m.Tree.ChildIDs(m.Current)
	sort.SliceStable(m.Kids, func(i, j int) bool {
		return m.Tree.Get(m.Kids[i]).Size > m.Tree.Get(m.Kids[j]).Size
	})
	m.Cursor = 0
	m.Offset = 0
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Kids)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", "l", "right":
			if len(m.Kids) == 0 {
				return m, nil
			}
			child := m.Kids[m.Cursor]
			if m.Tree.Get(child).IsDir {
				m.Current = child
				m.reload()
			}
		case "backspace", "h", "left":
			parent := m.Tree.Get(m.Current).Parent
			if parent != vfs.NoNode {
				m.Current = parent
				m.reload()
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m BrowseModel) View() string {
	var b strings.Builder

	cur := m.Tree.Get(m.Current)
	b.WriteString(StyleTitle.Render(m.breadcrumb()) + " " + StyleNumber.Render(humanBytes(cur.Size)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ descend  ⌫ up  q quit"))
	b.WriteString("\n\n")

	if len(m.Kids) == 0 {
		b.WriteString(listDimStyle.Render("  (empty directory)"))
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(m.Kids) {
		end = len(m.Kids)
	}

	for i := m.Offset; i < end; i++ {
		n := m.Tree.Get(m.Kids[i])
		share := 0.0
		if cur.Size > 0 {
			share = float64(n.Size) / float64(cur.Size)
		}

		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		name := n.Name
		if n.IsDir {
			name += "/"
		}

		b.WriteString(fmt.Sprintf("%s%s %s %s\n",
			cursor,
			listDimStyle.Render(sizeBar(share)),
			style.Render(fmt.Sprintf("%-40s", name)),
			listDimStyle.Render(fmt.Sprintf("%10s", humanBytes(n.Size)))))
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Kids))))

	return b.String()
}

// breadcrumb renders the path from the root to the current directory.
func (m BrowseModel) breadcrumb() string {
	var parts []string
	for id := m.Current; ; id = m.Tree.Get(id).Parent {
		parts = append(parts, m.Tree.Get(id).Name)
		if id == m.Tree.Root || m.Tree.Get(id).Parent == vfs.NoNode {
			break
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}
