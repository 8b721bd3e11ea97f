// Package objects implements the content-addressed object store: blobs
// and commits, persisted one file per object under .minigit/objects,
// named by their hash and compressed on disk with zstd.
package objects

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
)

const objectsDirName = "objects"

// ErrNotFound is returned by Store.GetBlob/GetCommit when the requested
// hash has no object on disk.
type ErrNotFound struct {
	Hash string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("object %s not found", e.Hash)
}

// ErrCorrupt is returned when a write finds an existing object whose
// decompressed bytes differ from the bytes being written — a detected
// hash collision — or when stored bytes fail to decompress.
type ErrCorrupt struct {
	Hash   string
	Reason string
}

func (e *ErrCorrupt) Error() string {
	return fmt.Sprintf("corrupt object store entry %s: %s", e.Hash, e.Reason)
}

// Store is the on-disk, content-addressed object store rooted at
// <gitDir>/objects. It is shared by blob and commit persistence.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore returns a Store rooted at gitDir/objects on fs.
func NewStore(fs afero.Fs, gitDir string) *Store {
	return &Store{fs: fs, dir: filepath.Join(gitDir, objectsDirName)}
}

func (s *Store) objectPath(hash string) string {
	return filepath.Join(s.dir, hash)
}

// Has reports whether an object with the given hash is present.
func (s *Store) Has(hash string) (bool, error) {
	_, err := s.fs.Stat(s.objectPath(hash))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// putRaw writes data under hash, compressing it with zstd. If an object
// already exists at that hash, its decompressed content must equal data
// exactly — anything else is a collision and fails as ErrCorrupt. Writes
// are atomic: a temp file is written and renamed into place.
func (s *Store) putRaw(hash string, data []byte) error {
	path := s.objectPath(hash)
	if exists, err := s.Has(hash); err != nil {
		return err
	} else if exists {
		existing, err := s.readRaw(hash)
		if err != nil {
			return err
		}
		if !bytes.Equal(existing, data) {
			return &ErrCorrupt{Hash: hash, Reason: "existing object bytes differ from write"}
		}
		return nil
	}

	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create objects directory: %w", err)
	}

	var compressed bytes.Buffer
	zw, err := zstd.NewWriter(&compressed)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return fmt.Errorf("failed to compress object %s: %w", hash, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush compressed object %s: %w", hash, err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, compressed.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write object %s: %w", hash, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to finalize object %s: %w", hash, err)
	}
	return nil
}

func (s *Store) readRaw(hash string) ([]byte, error) {
	path := s.objectPath(hash)
	f, err := s.fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ErrNotFound{Hash: hash}
		}
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, &ErrCorrupt{Hash: hash, Reason: "not a valid zstd stream"}
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, &ErrCorrupt{Hash: hash, Reason: "failed to decompress: " + err.Error()}
	}
	return data, nil
}

// PutBlob stores content under its own hash and returns that hash.
func (s *Store) PutBlob(content []byte) (string, error) {
	hash := Hash(content)
	if err := s.putRaw(hash, content); err != nil {
		return "", err
	}
	return hash, nil
}

// GetBlob retrieves the byte-faithful content previously stored by
// PutBlob.
func (s *Store) GetBlob(hash string) ([]byte, error) {
	return s.readRaw(hash)
}
