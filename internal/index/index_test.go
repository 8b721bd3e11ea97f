package index

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestStageAndGet(t *testing.T) {
	fs := afero.NewMemMapFs()
	idx, err := Load(fs, "/repo/.minigit")
	require.NoError(t, err)

	require.NoError(t, idx.Stage("a.txt", "hash1"))
	hash, ok := idx.Get("a.txt")
	require.True(t, ok)
	require.Equal(t, "hash1", hash)
}

func TestStageOverwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	idx, err := Load(fs, "/repo/.minigit")
	require.NoError(t, err)

	require.NoError(t, idx.Stage("a.txt", "hash1"))
	require.NoError(t, idx.Stage("a.txt", "hash2"))
	hash, _ := idx.Get("a.txt")
	require.Equal(t, "hash2", hash)
}

func TestUnstage(t *testing.T) {
	fs := afero.NewMemMapFs()
	idx, err := Load(fs, "/repo/.minigit")
	require.NoError(t, err)

	require.NoError(t, idx.Stage("a.txt", "hash1"))
	idx.Unstage("a.txt")
	_, ok := idx.Get("a.txt")
	require.False(t, ok)
}

func TestRejectsColonAndNewlineInPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	idx, err := Load(fs, "/repo/.minigit")
	require.NoError(t, err)

	require.Error(t, idx.Stage("weird:path.txt", "hash1"))
	require.Error(t, idx.Stage("weird\npath.txt", "hash1"))
	require.Error(t, idx.Stage("/abs/path.txt", "hash1"))
}

func TestPersistAndLoadRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	idx, err := Load(fs, "/repo/.minigit")
	require.NoError(t, err)

	require.NoError(t, idx.Stage("b.txt", "hashB"))
	require.NoError(t, idx.Stage("a.txt", "hashA"))
	require.NoError(t, idx.Persist())

	reloaded, err := Load(fs, "/repo/.minigit")
	require.NoError(t, err)
	require.Equal(t, idx.Snapshot(), reloaded.Snapshot())

	data, err := afero.ReadFile(fs, "/repo/.minigit/index")
	require.NoError(t, err)
	require.Equal(t, "a.txt:hashA\nb.txt:hashB\n", string(data))
}

func TestLoadMissingIndexIsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	idx, err := Load(fs, "/repo/.minigit")
	require.NoError(t, err)
	require.Empty(t, idx.Snapshot())
}

func TestClear(t *testing.T) {
	fs := afero.NewMemMapFs()
	idx, err := Load(fs, "/repo/.minigit")
	require.NoError(t, err)

	require.NoError(t, idx.Stage("a.txt", "h1"))
	idx.Clear()
	require.Empty(t, idx.Snapshot())
}

func TestPathsSorted(t *testing.T) {
	fs := afero.NewMemMapFs()
	idx, err := Load(fs, "/repo/.minigit")
	require.NoError(t, err)

	require.NoError(t, idx.Stage("z.txt", "1"))
	require.NoError(t, idx.Stage("a.txt", "2"))
	require.NoError(t, idx.Stage("m.txt", "3"))
	require.Equal(t, []string{"a.txt", "m.txt", "z.txt"}, idx.Paths())
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/.minigit/index", []byte("no-colon-here\n"), 0644))

	_, err := Load(fs, "/repo/.minigit")
	require.Error(t, err)
}
