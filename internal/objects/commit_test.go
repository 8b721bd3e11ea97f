package objects

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestHashDeterministic(t *testing.T) {
	data := []byte("hello\n")
	require.Equal(t, Hash(data), Hash(data))
	require.Len(t, Hash(data), 16)
}

func TestHashDiffersOnDifferentContent(t *testing.T) {
	require.NotEqual(t, Hash([]byte("a")), Hash([]byte("b")))
}

func TestBlobRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/repo/.minigit")

	content := []byte("hello\nworld\n")
	hash, err := store.PutBlob(content)
	require.NoError(t, err)
	require.Equal(t, Hash(content), hash)

	got, err := store.GetBlob(hash)
	require.NoError(t, err)
	require.Equal(t, content, got)
}

func TestPutBlobIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/repo/.minigit")

	content := []byte("same content")
	h1, err := store.PutBlob(content)
	require.NoError(t, err)
	h2, err := store.PutBlob(content)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

func TestGetBlobMissing(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/repo/.minigit")

	_, err := store.GetBlob("0000000000000000")
	require.Error(t, err)
	var notFound *ErrNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestCommitSerializationRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/repo/.minigit")

	tree := map[string]string{"b.txt": "bbbb", "a.txt": "aaaa"}
	c := NewCommit("initial commit", "1700000000", nil, tree, "Ada Lovelace <ada@example.com>")

	hash, err := store.PutCommit(c)
	require.NoError(t, err)
	require.Equal(t, c.Hash, hash)

	got, err := store.GetCommit(hash)
	require.NoError(t, err)
	require.Equal(t, c.Message, got.Message)
	require.Equal(t, c.Timestamp, got.Timestamp)
	require.Equal(t, c.Parents, got.Parents)
	require.Equal(t, c.Tree, got.Tree)
	require.Equal(t, c.Author, got.Author)
	require.Equal(t, c.Hash, got.Hash)
}

func TestCommitHashIgnoresAuthor(t *testing.T) {
	tree := map[string]string{"a.txt": "aaaa"}
	c1 := NewCommit("msg", "123", nil, tree, "Alice <a@example.com>")
	c2 := NewCommit("msg", "123", nil, tree, "Bob <b@example.com>")
	require.Equal(t, c1.Hash, c2.Hash)
}

func TestCommitHashDependsOnParentOrder(t *testing.T) {
	tree := map[string]string{}
	c1 := NewCommit("merge", "123", []string{"aaa", "bbb"}, tree, "")
	c2 := NewCommit("merge", "123", []string{"bbb", "aaa"}, tree, "")
	require.NotEqual(t, c1.Hash, c2.Hash)
}

func TestCommitHashIndependentOfTreeInsertionOrder(t *testing.T) {
	treeA := map[string]string{"a.txt": "h1", "z.txt": "h2", "m.txt": "h3"}
	treeB := map[string]string{"z.txt": "h2", "m.txt": "h3", "a.txt": "h1"}
	c1 := NewCommit("msg", "123", nil, treeA, "")
	c2 := NewCommit("msg", "123", nil, treeB, "")
	require.Equal(t, c1.Hash, c2.Hash)
}

func TestGetCommitDetectsCorruption(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewStore(fs, "/repo/.minigit")

	c := NewCommit("msg", "123", nil, map[string]string{"a.txt": "h1"}, "")
	hash, err := store.PutCommit(c)
	require.NoError(t, err)

	c2 := NewCommit("different message", "123", nil, map[string]string{"a.txt": "h1"}, "")
	raw := c2.serialize()
	require.NoError(t, afero.WriteFile(fs, "/repo/.minigit/objects/"+hash, compressBytes(t, raw), 0644))

	_, err = store.GetCommit(hash)
	require.Error(t, err)
	var corrupt *ErrCorrupt
	require.ErrorAs(t, err, &corrupt)
}

func compressBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
