package clierr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExitCodeMergeConflictIsZero(t *testing.T) {
	require.Equal(t, 0, ExitCode(NewMergeConflict("conflict in a.txt")))
}

func TestExitCodeUsageErrorIsTwo(t *testing.T) {
	require.Equal(t, 2, ExitCode(NewUsageError("missing argument")))
}

func TestExitCodeOtherKindsAreOne(t *testing.T) {
	require.Equal(t, 1, ExitCode(NewNotARepo("/tmp/x")))
	require.Equal(t, 1, ExitCode(NewBranchExists("main")))
}

func TestExitCodeNonClierrIsOne(t *testing.T) {
	require.Equal(t, 1, ExitCode(errors.New("boom")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewCorruptStore("bad object", cause)
	require.ErrorIs(t, err, cause)
}
