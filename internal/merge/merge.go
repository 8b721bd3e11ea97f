// Package merge implements whole-file three-way reconciliation between
// a base tree and two divergent descendants, comparing blob hashes
// rather than content (no line-level merging).
package merge

import (
	"bytes"
	"fmt"
)

// Resolution is the outcome for a single path after reconciling base,
// ours, and theirs.
type Resolution int

const (
	// Unchanged means no side touched the path relative to base; the
	// caller need not write anything.
	Unchanged Resolution = iota
	// TakeOurs means the result should keep our side's content.
	TakeOurs
	// TakeTheirs means the result should take their side's content.
	TakeTheirs
	// Delete means the path should not exist in the merged tree.
	Delete
	// Conflict means both sides changed the path incompatibly; the
	// caller must write conflict markers and record both hashes.
	Conflict
)

// PathResult is the per-path outcome of the merge.
type PathResult struct {
	Path       string
	Resolution Resolution
	// ResultHash is set for TakeOurs/TakeTheirs: the blob hash the
	// merged tree should record for this path.
	ResultHash string
	// OurHash/TheirHash are set for Conflict, so the caller can load
	// both sides' content to build the conflict-marked file.
	OurHash   string
	TheirHash string
}

// Outcome is the full result of reconciling two trees against a base.
type Outcome struct {
	Results      []PathResult
	HasConflicts bool
}

// ThreeWay reconciles ourTree and theirTree against baseTree, all
// path -> blob-hash maps. It implements the resolution table:
//
//	in base, ours, theirs | same hash in all three -> unchanged
//	in base, ours, theirs | ours == base            -> take theirs
//	in base, ours, theirs | theirs == base           -> take ours
//	in base, ours, theirs | ours == theirs (both changed, same way) -> take ours
//	in base, ours, theirs | all three differ         -> conflict
//	in base+ours, not theirs | ours == base          -> delete
//	in base+ours, not theirs | ours != base          -> conflict (modify/delete)
//	in base+theirs, not ours | theirs == base         -> delete
//	in base+theirs, not ours | theirs != base         -> conflict (delete/modify)
//	not in base, in ours only                         -> take ours
//	not in base, in theirs only                       -> take theirs
//	not in base, in both, same hash                   -> take ours (identical add)
//	not in base, in both, different hash              -> conflict (add/add)
func ThreeWay(baseTree, ourTree, theirTree map[string]string) Outcome {
	paths := make(map[string]bool)
	for p := range baseTree {
		paths[p] = true
	}
	for p := range ourTree {
		paths[p] = true
	}
	for p := range theirTree {
		paths[p] = true
	}

	var outcome Outcome
	for path := range paths {
		baseHash, inBase := baseTree[path]
		ourHash, inOurs := ourTree[path]
		theirHash, inTheirs := theirTree[path]

		result := resolvePath(path, baseHash, inBase, ourHash, inOurs, theirHash, inTheirs)
		outcome.Results = append(outcome.Results, result)
		if result.Resolution == Conflict {
			outcome.HasConflicts = true
		}
	}
	return outcome
}

func resolvePath(path string, baseHash string, inBase bool, ourHash string, inOurs bool, theirHash string, inTheirs bool) PathResult {
	switch {
	case inBase && inOurs && inTheirs:
		if baseHash == ourHash && baseHash == theirHash {
			return PathResult{Path: path, Resolution: Unchanged}
		}
		if baseHash == ourHash {
			return PathResult{Path: path, Resolution: TakeTheirs, ResultHash: theirHash}
		}
		if baseHash == theirHash {
			return PathResult{Path: path, Resolution: TakeOurs, ResultHash: ourHash}
		}
		if ourHash == theirHash {
			return PathResult{Path: path, Resolution: TakeOurs, ResultHash: ourHash}
		}
		return PathResult{Path: path, Resolution: Conflict, OurHash: ourHash, TheirHash: theirHash}

	case inBase && inOurs && !inTheirs:
		if ourHash == baseHash {
			return PathResult{Path: path, Resolution: Delete}
		}
		return PathResult{Path: path, Resolution: Conflict, OurHash: ourHash, TheirHash: ""}

	case inBase && !inOurs && inTheirs:
		if theirHash == baseHash {
			return PathResult{Path: path, Resolution: Delete}
		}
		return PathResult{Path: path, Resolution: Conflict, OurHash: "", TheirHash: theirHash}

	case inBase && !inOurs && !inTheirs:
		return PathResult{Path: path, Resolution: Delete}

	case !inBase && inOurs && inTheirs:
		if ourHash == theirHash {
			return PathResult{Path: path, Resolution: TakeOurs, ResultHash: ourHash}
		}
		return PathResult{Path: path, Resolution: Conflict, OurHash: ourHash, TheirHash: theirHash}

	case !inBase && inOurs && !inTheirs:
		return PathResult{Path: path, Resolution: TakeOurs, ResultHash: ourHash}

	case !inBase && !inOurs && inTheirs:
		return PathResult{Path: path, Resolution: TakeTheirs, ResultHash: theirHash}

	default:
		return PathResult{Path: path, Resolution: Unchanged}
	}
}

// MarkConflict renders the conflict-marked file content for a path
// whose sides diverged, in the exact marker format the original tool
// produces. Each side's trailing newline, if any, is trimmed first so
// the usual case of two newline-terminated text files still produces
// exactly one newline before "=======" and before the trailer.
func MarkConflict(ourContent, theirContent []byte) []byte {
	ourContent = bytes.TrimSuffix(ourContent, []byte("\n"))
	theirContent = bytes.TrimSuffix(theirContent, []byte("\n"))
	return []byte(fmt.Sprintf("<<<<<<< HEAD\n%s\n=======\n%s\n>>>>>>> incoming\n", ourContent, theirContent))
}
