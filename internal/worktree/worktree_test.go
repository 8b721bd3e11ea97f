package worktree

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/Hermela-code/minigit/internal/objects"
)

func newFixture(t *testing.T, protect []string) (*Worktree, *objects.Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store := objects.NewStore(fs, "/repo/.minigit")
	wt := New(fs, "/repo", "/repo/.minigit", store, protect)
	return wt, store, fs
}

func TestRestoreWritesBlobs(t *testing.T) {
	wt, store, fs := newFixture(t, nil)

	hash, err := store.PutBlob([]byte("hello\n"))
	require.NoError(t, err)

	require.NoError(t, wt.Restore(map[string]string{"a.txt": hash}))

	data, err := afero.ReadFile(fs, "/repo/a.txt")
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(data))
}

func TestRestoreRemovesStaleFiles(t *testing.T) {
	wt, store, fs := newFixture(t, nil)
	require.NoError(t, afero.WriteFile(fs, "/repo/stale.txt", []byte("old"), 0644))

	hash, err := store.PutBlob([]byte("new\n"))
	require.NoError(t, err)
	require.NoError(t, wt.Restore(map[string]string{"a.txt": hash}))

	exists, err := afero.Exists(fs, "/repo/stale.txt")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestRestoreHonorsProtectList(t *testing.T) {
	wt, store, fs := newFixture(t, []string{"Makefile"})
	require.NoError(t, afero.WriteFile(fs, "/repo/Makefile", []byte("build stuff"), 0644))

	hash, err := store.PutBlob([]byte("content\n"))
	require.NoError(t, err)
	require.NoError(t, wt.Restore(map[string]string{"a.txt": hash}))

	exists, err := afero.Exists(fs, "/repo/Makefile")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestRestoreIgnoresGitDir(t *testing.T) {
	wt, store, fs := newFixture(t, nil)
	require.NoError(t, afero.WriteFile(fs, "/repo/.minigit/HEAD", []byte("ref: refs/heads/main"), 0644))

	hash, err := store.PutBlob([]byte("content\n"))
	require.NoError(t, err)
	require.NoError(t, wt.Restore(map[string]string{"a.txt": hash}))

	exists, err := afero.Exists(fs, "/repo/.minigit/HEAD")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestIsCleanDetectsModification(t *testing.T) {
	wt, store, fs := newFixture(t, nil)
	hash, err := store.PutBlob([]byte("original\n"))
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "/repo/a.txt", []byte("original\n"), 0644))

	clean, err := wt.IsClean(map[string]string{"a.txt": hash})
	require.NoError(t, err)
	require.True(t, clean)

	require.NoError(t, afero.WriteFile(fs, "/repo/a.txt", []byte("modified\n"), 0644))
	clean, err = wt.IsClean(map[string]string{"a.txt": hash})
	require.NoError(t, err)
	require.False(t, clean)
}

func TestIsCleanMissingFile(t *testing.T) {
	wt, _, _ := newFixture(t, nil)
	clean, err := wt.IsClean(map[string]string{"a.txt": "somehash"})
	require.NoError(t, err)
	require.False(t, clean)
}
