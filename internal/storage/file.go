package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"tether/internal/queue"
)

// snapshotVersion guards the on-disk JSON layout. Bump when the snapshot
// shape changes.
const snapshotVersion = 1

type fileSnapshot struct {
	Version int          `json:"version"`
	Items   []queue.Item `json:"items"`
}

// FileStore persists queue snapshots as a single JSON file. A sibling lock
// file (flock) serializes writers so two processes pointed at the same
// snapshot cannot interleave partial writes.
type FileStore struct {
	path string
	lock *flock.Flock
}

// NewFileStore builds a FileStore writing to path.
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("file store path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

// Path returns the snapshot file location.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the snapshot. A missing file is an empty queue, not an error.
func (f *FileStore) Load(ctx context.Context) ([]queue.Item, error) {
	if err := f.lockCtx(ctx); err != nil {
		return nil, err
	}
	defer f.unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []queue.Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot fileSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snapshot.Version != snapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, expected %d (delete %s to reset)",
			snapshot.Version, snapshotVersion, f.path)
	}
	if snapshot.Items == nil {
		return []queue.Item{}, nil
	}
	return snapshot.Items, nil
}

// Save atomically replaces the snapshot via temp-file rename.
func (f *FileStore) Save(ctx context.Context, items []queue.Item) error {
	if err := f.lockCtx(ctx); err != nil {
		return err
	}
	defer f.unlock()

	if items == nil {
		items = []queue.Item{}
	}
	data, err := json.MarshalIndent(fileSnapshot{Version: snapshotVersion, Items: items}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Clear removes the snapshot file entirely.
func (f *FileStore) Clear(ctx context.Context) error {
	if err := f.lockCtx(ctx); err != nil {
		return err
	}
	defer f.unlock()

	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}

func (f *FileStore) lockCtx(ctx context.Context) error {
	ctx = ensureContext(ctx)
	locked, err := f.lock.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquire snapshot lock: %w", err)
	}
	if !locked {
		return errors.New("snapshot lock unavailable")
	}
	return nil
}

func (f *FileStore) unlock() {
	_ = f.lock.Unlock()
}
