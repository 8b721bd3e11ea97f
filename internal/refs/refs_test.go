package refs

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(afero.NewMemMapFs(), "/repo/.minigit")
}

func TestCreateAndReadBranch(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.CreateBranch("main", "abc123"))
	got, err := s.ReadBranch("main")
	require.NoError(t, err)
	require.Equal(t, "abc123", got)
}

func TestCreateBranchAlreadyExists(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.CreateBranch("main", "abc123"))
	err := s.CreateBranch("main", "def456")
	require.Error(t, err)
	var exists *ErrBranchExists
	require.ErrorAs(t, err, &exists)
}

func TestReadBranchNotFound(t *testing.T) {
	s := newTestStore()
	_, err := s.ReadBranch("missing")
	require.Error(t, err)
	var notFound *ErrBranchNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestInvalidBranchName(t *testing.T) {
	s := newTestStore()
	require.Error(t, s.CreateBranch("bad name", "abc"))
	require.Error(t, s.CreateBranch("bad/name", "abc"))
	require.Error(t, s.CreateBranch("", "abc"))
}

func TestDeleteBranch(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.CreateBranch("feature", "abc123"))
	require.NoError(t, s.DeleteBranch("feature"))
	exists, err := s.BranchExists("feature")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestRenameBranch(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.CreateBranch("old", "abc123"))
	require.NoError(t, s.RenameBranch("old", "new"))

	got, err := s.ReadBranch("new")
	require.NoError(t, err)
	require.Equal(t, "abc123", got)

	_, err = s.ReadBranch("old")
	require.Error(t, err)
}

func TestListBranchesSorted(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.CreateBranch("zeta", "1"))
	require.NoError(t, s.CreateBranch("alpha", "2"))
	require.NoError(t, s.CreateBranch("mike", "3"))

	names, err := s.ListBranches()
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "mike", "zeta"}, names)
}

func TestListBranchesEmptyRepo(t *testing.T) {
	s := newTestStore()
	names, err := s.ListBranches()
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestHeadSymbolicRoundTrip(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.WriteHeadSymbolic("main"))

	head, err := s.ReadHead()
	require.NoError(t, err)
	require.False(t, head.IsDetached())
	require.Equal(t, "main", head.Branch)
}

func TestHeadDetachedRoundTrip(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.WriteHeadDetached("abc123"))

	head, err := s.ReadHead()
	require.NoError(t, err)
	require.True(t, head.IsDetached())
	require.Equal(t, "abc123", head.Detached)
}

func TestResolveHeadFollowsBranch(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.CreateBranch("main", "commit1"))
	require.NoError(t, s.WriteHeadSymbolic("main"))

	resolved, err := s.ResolveHead()
	require.NoError(t, err)
	require.Equal(t, "commit1", resolved)
}

func TestResolveHeadOnEmptyBranch(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.WriteHeadSymbolic("main"))

	resolved, err := s.ResolveHead()
	require.NoError(t, err)
	require.Empty(t, resolved)
}

func TestResolveHeadDetached(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.WriteHeadDetached("commit1"))

	resolved, err := s.ResolveHead()
	require.NoError(t, err)
	require.Equal(t, "commit1", resolved)
}
