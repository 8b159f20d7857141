// Package snapshot persists scan results so a tree can be re-rendered
// later without touching the filesystem again.
//
// A snapshot stores the flat entry list from a scan, not the built tree;
// the list is cheap to serialize and the tree is cheap to rebuild. Two
// backends are available:
//   - FileStore: JSON files in a directory, for CLI usage
//   - MongoStore: a MongoDB collection, for the server
package snapshot

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spacelens/spacelens/pkg/scan"
	"github.com/spacelens/spacelens/pkg/vfs"
	"github.com/spacelens/spacelens/pkg/xerrors"
)

// Snapshot is one persisted scan.
type Snapshot struct {
	ID        string          `json:"id" bson:"_id"`
	Root      string          `json:"root" bson:"root"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	Entries   []scan.RawEntry `json:"entries" bson:"entries"`
}

// Info is the listing view of a snapshot, without the entry payload.
type Info struct {
	ID        string    `json:"id" bson:"_id"`
	Root      string    `json:"root" bson:"root"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	NumFiles  int       `json:"num_files" bson:"num_files"`
	TotalSize int64     `json:"total_size" bson:"total_size"`
}

// New creates a snapshot of the given entries with a fresh ID.
func New(root string, entries []scan.RawEntry) *Snapshot {
	return &Snapshot{
		ID:        uuid.NewString(),
		Root:      root,
		CreatedAt: time.Now().UTC(),
		Entries:   entries,
	}
}

// Tree rebuilds the aggregated vfs tree from the stored entries.
func (s *Snapshot) Tree() *vfs.Tree {
	return scan.Build(s.Entries)
}

// Describe summarizes the snapshot for listings.
func (s *Snapshot) Describe() Info {
	info := Info{ID: s.ID, Root: s.Root, CreatedAt: s.CreatedAt}
	for _, e := range s.Entries {
		if !e.IsDir {
			info.NumFiles++
			info.TotalSize += e.Size
		}
	}
	return info
}

// ErrNotFound reports a missing snapshot ID.
var ErrNotFound = xerrors.New(xerrors.ErrCodeSnapshotNotFound, "snapshot not found")

// Store is the interface for snapshot storage backends.
type Store interface {
	// Put persists a snapshot.
	Put(ctx context.Context, snap *Snapshot) error

	// Get retrieves a snapshot by ID. Returns ErrNotFound for unknown IDs.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// List returns summaries of all snapshots, newest first.
	List(ctx context.Context) ([]Info, error)

	// Delete removes a snapshot. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
