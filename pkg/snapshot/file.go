package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spacelens/spacelens/pkg/xerrors"
)

// FileStore keeps snapshots as JSON files in a directory.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file-based store rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrCodeStorage, err, "create snapshot dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Put persists a snapshot.
func (s *FileStore) Put(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return xerrors.Wrap(xerrors.ErrCodeStorage, err, "encode snapshot %s", snap.ID)
	}
	if err := os.WriteFile(s.path(snap.ID), data, 0o644); err != nil {
		return xerrors.Wrap(xerrors.ErrCodeStorage, err, "write snapshot %s", snap.ID)
	}
	return nil
}

// Get retrieves a snapshot by ID.
func (s *FileStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrCodeStorage, err, "read snapshot %s", id)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrCodeInvalidFormat, err, "decode snapshot %s", id)
	}
	return &snap, nil
}

// List returns summaries of all snapshots, newest first.
func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrCodeStorage, err, "read snapshot dir")
	}

	var infos []Info
	for _, de := range dirents {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, de.Name()))
		if err != nil {
			continue
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			// Foreign or corrupt file; skip it.
			continue
		}
		infos = append(infos, snap.Describe())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// Delete removes a snapshot.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return xerrors.Wrap(xerrors.ErrCodeStorage, err, "remove snapshot %s", id)
	}
	return nil
}

// Close does nothing for the file backend.
func (s *FileStore) Close(ctx context.Context) error { return nil }

var _ Store = (*FileStore)(nil)
