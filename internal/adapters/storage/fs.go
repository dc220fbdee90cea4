// Package storage provides ports.SlotStore backends.
//
// Every backend stores each slot as one opaque blob and replaces it as a
// whole on write. Missing slots are reported as domain.ErrNotFound; any other
// failure is a domain.StorageError.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/jsamuelsen/quote-manager/internal/domain"
)

const (
	slotFileMode = 0o644
	slotDirMode  = 0o755
	tmpSuffix    = ".tmp"
	healthSlot   = ".health"
)

var slotNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileStore keeps one file per slot on a billy filesystem.
// Writes go to a temporary file that is renamed over the slot, so a crash
// mid-write never leaves a truncated slot behind.
type FileStore struct {
	fs   billy.Filesystem
	name string
}

// NewFileStore wraps an existing billy filesystem.
func NewFileStore(fs billy.Filesystem, name string) *FileStore {
	if fs == nil {
		panic("storage: filesystem is required")
	}

	return &FileStore{fs: fs, name: name}
}

// NewOSFileStore stores slots as files under dir, creating it if needed.
func NewOSFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, slotDirMode); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	return NewFileStore(osfs.New(dir), "file"), nil
}

// NewMemoryStore keeps slots in memory. Contents are lost when the process exits.
func NewMemoryStore() *FileStore {
	return NewFileStore(memfs.New(), "memory")
}

// Get implements ports.SlotStore.
func (s *FileStore) Get(ctx context.Context, slot string) ([]byte, error) {
	if err := checkSlot(ctx, slot); err != nil {
		return nil, err
	}

	data, err := util.ReadFile(s.fs, slot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.NewNotFoundError("slot", slot)
		}

		return nil, domain.NewStorageError(slot, "read", err)
	}

	return data, nil
}

// Put implements ports.SlotStore.
func (s *FileStore) Put(ctx context.Context, slot string, data []byte) error {
	if err := checkSlot(ctx, slot); err != nil {
		return err
	}

	tmp := slot + tmpSuffix

	if err := util.WriteFile(s.fs, tmp, data, slotFileMode); err != nil {
		_ = s.fs.Remove(tmp)
		return domain.NewStorageError(slot, "write", err)
	}

	if err := s.fs.Rename(tmp, slot); err != nil {
		_ = s.fs.Remove(tmp)
		return domain.NewStorageError(slot, "write", err)
	}

	return nil
}

// Delete implements ports.SlotStore.
func (s *FileStore) Delete(ctx context.Context, slot string) error {
	if err := checkSlot(ctx, slot); err != nil {
		return err
	}

	if err := s.fs.Remove(slot); err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.NewStorageError(slot, "delete", err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (s *FileStore) Name() string {
	return "storage-" + s.name
}

// Check implements ports.HealthChecker by writing and removing a probe slot.
func (s *FileStore) Check(ctx context.Context) error {
	if err := s.Put(ctx, healthSlot, []byte("ok")); err != nil {
		return err
	}

	return s.Delete(ctx, healthSlot)
}

// Close is a no-op; it lets FileStore stand in wherever a closable backend is expected.
func (s *FileStore) Close() error {
	return nil
}

func checkSlot(ctx context.Context, slot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !slotNamePattern.MatchString(slot) || slot == "." || slot == ".." {
		return domain.NewValidationErrorWithValue("slot", "must be a plain name", slot)
	}

	return nil
}
