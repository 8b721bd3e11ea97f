// Package index implements the staging area: the set of paths and
// blob hashes that the next commit will record, persisted as a plain
// "path:hex" line per entry.
package index

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

const indexFileName = "index"

// Index is an in-memory staging area backed by a single text file.
type Index struct {
	fs      afero.Fs
	path    string
	entries map[string]string // relative path -> blob hash
}

// Load reads the index file under gitDir, or returns an empty Index if
// none exists yet (a fresh repository with nothing staged).
func Load(fs afero.Fs, gitDir string) (*Index, error) {
	idx := &Index{
		fs:      fs,
		path:    filepath.Join(gitDir, indexFileName),
		entries: make(map[string]string),
	}

	f, err := fs.Open(idx.path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		sep := strings.LastIndex(line, ":")
		if sep < 0 {
			return nil, fmt.Errorf("malformed index entry at line %d: %q", lineNo, line)
		}
		path, hash := line[:sep], line[sep+1:]
		idx.entries[path] = hash
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	return idx, nil
}

// ValidatePath rejects paths that would be ambiguous in the "path:hex"
// text format or that escape the working tree.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path must not be empty")
	}
	if strings.ContainsAny(path, ":\n") {
		return fmt.Errorf("path %q must not contain ':' or a newline", path)
	}
	if filepath.IsAbs(path) {
		return fmt.Errorf("path %q must be relative", path)
	}
	if clean := filepath.Clean(path); clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path %q must not leave the working tree", path)
	}
	return nil
}

// Stage records path as pointing at blobHash, overwriting any prior
// entry for the same path.
func (idx *Index) Stage(path, blobHash string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	idx.entries[path] = blobHash
	return nil
}

// Unstage removes path from the index. It is a no-op if path was not
// staged.
func (idx *Index) Unstage(path string) {
	delete(idx.entries, path)
}

// Clear empties the index, used once a commit has captured its
// contents as a tree.
func (idx *Index) Clear() {
	idx.entries = make(map[string]string)
}

// Get returns the blob hash staged for path, if any.
func (idx *Index) Get(path string) (string, bool) {
	h, ok := idx.entries[path]
	return h, ok
}

// Snapshot returns a defensive copy of the staged path->hash set, the
// tree that a commit made right now would record.
func (idx *Index) Snapshot() map[string]string {
	out := make(map[string]string, len(idx.entries))
	for p, h := range idx.entries {
		out[p] = h
	}
	return out
}

// Paths returns the staged paths in ascending order.
func (idx *Index) Paths() []string {
	paths := make([]string, 0, len(idx.entries))
	for p := range idx.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Persist writes the index back to disk as one "path:hex" line per
// entry, sorted by path for a stable diff-friendly file.
func (idx *Index) Persist() error {
	var buf strings.Builder
	for _, p := range idx.Paths() {
		buf.WriteString(p)
		buf.WriteByte(':')
		buf.WriteString(idx.entries[p])
		buf.WriteByte('\n')
	}

	if err := idx.fs.MkdirAll(filepath.Dir(idx.path), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	tmp := idx.path + ".tmp"
	if err := afero.WriteFile(idx.fs, tmp, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	if err := idx.fs.Rename(tmp, idx.path); err != nil {
		_ = idx.fs.Remove(tmp)
		return fmt.Errorf("failed to finalize index: %w", err)
	}
	return nil
}
