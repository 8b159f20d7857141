// Package scan walks a filesystem subtree and builds the vfs arena tree
// the layout engine consumes.
//
// The walker is deliberately forgiving: unreadable directories and files
// that vanish mid-scan are logged at debug level and skipped, never fatal.
// A scan produces a flat list of RawEntry values first; Build then turns
// the list into an aggregated, size-sorted tree. The two phases are split
// so snapshots can persist the cheap flat form.
package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/spacelens/spacelens/pkg/vfs"
)

// RawEntry is one file or directory as reported by the walker.
type RawEntry struct {
	Path  string `json:"path" bson:"path"`
	Size  int64  `json:"size" bson:"size"`
	IsDir bool   `json:"is_dir" bson:"is_dir"`
}

// Walk collects entries under root. The root directory itself is included.
// Cancellation via ctx stops the walk and returns ctx.Err().
func Walk(ctx context.Context, root string, logger *log.Logger) ([]RawEntry, error) {
	if logger == nil {
		logger = log.Default()
	}
	root = filepath.Clean(root)
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}

	var entries []RawEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			logger.Debug("skipping unreadable path", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			entries = append(entries, RawEntry{Path: path, IsDir: true})
			return nil
		}
		info, err := d.Info()
		if err != nil {
			logger.Debug("skipping vanished file", "path", path, "err", err)
			return nil
		}
		// Symlinks count as zero-size leaves so cycles cannot inflate
		// totals; WalkDir does not follow them anyway.
		size := info.Size()
		if info.Mode()&fs.ModeSymlink != 0 {
			size = 0
		}
		entries = append(entries, RawEntry{Path: path, Size: size})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Result is the hand-off value for asynchronous scans.
type Result struct {
	Tree *vfs.Tree
	Err  error
}

// Start runs Walk+Build in its own goroutine and delivers the finished
// tree over the returned channel. The goroutine owns the tree until it
// sends; the receiver owns it exclusively afterwards, so no locking is
// involved at any point.
func Start(ctx context.Context, root string, logger *log.Logger) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		entries, err := Walk(ctx, root, logger)
		if err != nil {
			ch <- Result{Err: err}
			return
		}
		ch <- Result{Tree: Build(entries)}
	}()
	return ch
}

// Scan is the synchronous convenience wrapper: walk root and build the
// aggregated tree.
func Scan(ctx context.Context, root string, logger *log.Logger) (*vfs.Tree, error) {
	entries, err := Walk(ctx, root, logger)
	if err != nil {
		return nil, err
	}
	return Build(entries), nil
}

// Build turns a flat entry list into an aggregated, size-sorted tree.
// Parent directories missing from the list (scanners may emit files first
// or skip unreadable directories) are created implicitly with zero own
// size.
func Build(entries []RawEntry) *vfs.Tree {
	if len(entries) == 0 {
		return vfs.New("(empty)")
	}

	rootPath := commonRoot(entries)
	rootName := filepath.Base(rootPath)
	if rootName == "" || rootName == string(filepath.Separator) {
		rootName = rootPath
	}

	tree := vfs.New(rootName)
	byPath := make(map[string]vfs.NodeID, len(entries))
	byPath[rootPath] = tree.Root

	var ensureDir func(path string) vfs.NodeID
	ensureDir = func(path string) vfs.NodeID {
		if id, ok := byPath[path]; ok {
			return id
		}
		parent := ensureDir(filepath.Dir(path))
		id := tree.AddChild(parent, vfs.Node{Name: filepath.Base(path), IsDir: true})
		byPath[path] = id
		return id
	}

	for _, e := range entries {
		path := filepath.Clean(e.Path)
		if path == rootPath {
			continue
		}
		if !strings.HasPrefix(path, rootPath) {
			continue
		}
		if e.IsDir {
			ensureDir(path)
			continue
		}
		parent := ensureDir(filepath.Dir(path))
		name := filepath.Base(path)
		node := vfs.Node{Name: name, Size: e.Size}
		if ext := strings.TrimPrefix(filepath.Ext(name), "."); ext != "" {
			node.Ext = tree.InternExt(ext)
		}
		id := tree.AddChild(parent, node)
		byPath[path] = id
	}

	vfs.AggregateSizes(tree)
	vfs.SortChildrenBySize(tree)
	return tree
}

// commonRoot finds the deepest directory containing every entry. A sample
// of the list is enough; scanners emit paths under one root.
func commonRoot(entries []RawEntry) string {
	root := filepath.Clean(entries[0].Path)
	if !entries[0].IsDir {
		root = filepath.Dir(root)
	}
	limit := len(entries)
	if limit > 100 {
		limit = 100
	}
	for _, e := range entries[1:limit] {
		p := filepath.Clean(e.Path)
		for !strings.HasPrefix(p, root) {
			parent := filepath.Dir(root)
			if parent == root {
				return root
			}
			root = parent
		}
	}
	return root
}
