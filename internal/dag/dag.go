// Package dag walks the commit graph: ancestor collection and the
// lowest-common-ancestor search used by merge to locate a base commit.
package dag

import (
	"fmt"

	"github.com/Hermela-code/minigit/internal/objects"
)

// CommitGetter is the subset of objects.Store that dag needs, so
// callers can pass a Store directly without dag importing afero.
type CommitGetter interface {
	GetCommit(hash string) (*objects.Commit, error)
}

// Ancestors returns the set of commit hashes reachable from start by
// following parent links, including start itself.
func Ancestors(store CommitGetter, start string) (map[string]bool, error) {
	seen := make(map[string]bool)
	stack := []string{start}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if seen[current] {
			continue
		}
		seen[current] = true

		c, err := store.GetCommit(current)
		if err != nil {
			return nil, fmt.Errorf("failed to read commit %s: %w", current, err)
		}
		stack = append(stack, c.Parents...)
	}

	return seen, nil
}

// LCA returns a common ancestor of a and b, searching depth-first from
// a's side first and then b's side, returning the first ancestor of a
// also reachable from b in that search order.
//
// This intentionally does NOT guarantee the lowest common ancestor in
// the general DAG sense — it returns the first ancestor of a that the
// traversal from b also reaches, which can be an ancestor of the true
// LCA rather than the LCA itself in graphs with multiple merge paths.
// This replicates the original implementation's findLCA exactly,
// including that limitation.
func LCA(store CommitGetter, a, b string) (string, error) {
	ancestorsOfA, err := collectReachable(store, a)
	if err != nil {
		return "", err
	}

	stack := []string{b}
	visited := make(map[string]bool)
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[current] {
			continue
		}
		visited[current] = true

		if ancestorsOfA[current] {
			return current, nil
		}

		c, err := store.GetCommit(current)
		if err != nil {
			return "", fmt.Errorf("failed to read commit %s: %w", current, err)
		}
		stack = append(stack, c.Parents...)
	}

	return "", nil
}

// collectReachable is the same traversal as Ancestors but kept
// separate so LCA's two passes read clearly as mirrors of the
// original implementation's two while-loops.
func collectReachable(store CommitGetter, start string) (map[string]bool, error) {
	return Ancestors(store, start)
}

// IsAncestor reports whether potentialAncestor is reachable from
// potentialDescendant by following parent links (including equality).
func IsAncestor(store CommitGetter, potentialAncestor, potentialDescendant string) (bool, error) {
	if potentialAncestor == potentialDescendant {
		return true, nil
	}
	reachable, err := Ancestors(store, potentialDescendant)
	if err != nil {
		return false, err
	}
	return reachable[potentialAncestor], nil
}
