package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"stammdaten/internal/profile/codec"
	"stammdaten/internal/profile/models"
	dErrors "stammdaten/pkg/domain-errors"
)

// ProfileFilename is fixed; only the directory is configurable.
const ProfileFilename = "profile.json"

// FileStore keeps the profile as a single JSON document on local disk.
// Saves are atomic: the document is written to a temporary file in the same
// directory and renamed over the previous one, so a crash mid-write never
// leaves a truncated profile behind.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir. The directory is created
// lazily on first save, so pointing at a not-yet-existing config directory
// is fine.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the full path of the profile document.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, ProfileFilename)
}

func (s *FileStore) Load(_ context.Context) (models.Profile, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return models.Profile{}, ErrNotFound
	}
	if err != nil {
		return models.Profile{}, dErrors.Wrap(err, dErrors.CodeStorage, "failed to read profile file")
	}
	return codec.Decode(data)
}

func (s *FileStore) Save(_ context.Context, profile models.Profile) error {
	data, err := codec.Encode(profile)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to create data directory")
	}

	tmp, err := os.CreateTemp(s.dir, ProfileFilename+".tmp-*")
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to create temporary profile file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to write profile file")
	}
	if err := tmp.Close(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, "failed to flush profile file")
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStorage, fmt.Sprintf("failed to replace %s", ProfileFilename))
	}
	return nil
}

var _ Store = (*FileStore)(nil)
