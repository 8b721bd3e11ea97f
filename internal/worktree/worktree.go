// Package worktree materializes a commit's tree onto the flat working
// directory and cleans up files that do not belong to the target
// snapshot.
package worktree

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Hermela-code/minigit/internal/objects"
)

// Worktree writes blobs to and removes stray files from a single,
// non-recursive working directory. Subdirectories are out of scope by
// design: the tree this system tracks is flat.
type Worktree struct {
	fs      afero.Fs
	root    string
	gitDir  string
	store   *objects.Store
	protect map[string]bool
}

// New returns a Worktree rooted at root, backed by store for blob
// lookups. protectList names files that Restore must never remove
// even if they are absent from the target tree — e.g. build artifacts
// the caller wants left alone. It is caller-supplied configuration,
// never a hardcoded set of tool-specific filenames.
func New(fs afero.Fs, root, gitDir string, store *objects.Store, protectList []string) *Worktree {
	protect := make(map[string]bool, len(protectList))
	for _, p := range protectList {
		protect[p] = true
	}
	return &Worktree{fs: fs, root: root, gitDir: gitDir, store: store, protect: protect}
}

func (w *Worktree) gitDirName() string {
	return filepath.Base(w.gitDir)
}

// currentFiles lists the flat, non-repo-directory, non-protected
// regular files present at the working directory root.
func (w *Worktree) currentFiles() (map[string]bool, error) {
	entries, err := afero.ReadDir(w.fs, w.root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan working directory: %w", err)
	}
	files := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name == w.gitDirName() {
			continue
		}
		if w.protect[name] {
			continue
		}
		files[name] = true
	}
	return files, nil
}

// Restore writes every blob in tree to the working directory root and
// removes any existing flat file that is not in tree, is not the
// repository directory, and is not on the protect-list.
func (w *Worktree) Restore(tree map[string]string) error {
	current, err := w.currentFiles()
	if err != nil {
		return err
	}

	for path, hash := range tree {
		content, err := w.store.GetBlob(hash)
		if err != nil {
			return fmt.Errorf("failed to read blob %s for %s: %w", hash, path, err)
		}
		absPath := filepath.Join(w.root, path)
		if err := afero.WriteFile(w.fs, absPath, content, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		delete(current, path)
	}

	for stale := range current {
		if err := w.fs.Remove(filepath.Join(w.root, stale)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", stale, err)
		}
	}

	return nil
}

// IsClean reports whether every path in the given path->hash map
// matches the blob hash of the file on disk — the check a checkout or
// merge runs against HEAD's committed tree to refuse discarding
// uncommitted changes.
func (w *Worktree) IsClean(staged map[string]string) (bool, error) {
	for path, wantHash := range staged {
		content, err := afero.ReadFile(w.fs, filepath.Join(w.root, path))
		if err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if objects.Hash(content) != wantHash {
			return false, nil
		}
	}
	return true, nil
}
