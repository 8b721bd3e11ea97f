// Package repository is the facade that orchestrates the object
// store, ref store, index, DAG walker, worktree materializer, and
// merge engine into init/add/commit/log/status/branch/checkout/merge.
package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/Hermela-code/minigit/internal/clierr"
	"github.com/Hermela-code/minigit/internal/config"
	"github.com/Hermela-code/minigit/internal/dag"
	"github.com/Hermela-code/minigit/internal/index"
	"github.com/Hermela-code/minigit/internal/merge"
	"github.com/Hermela-code/minigit/internal/objects"
	"github.com/Hermela-code/minigit/internal/reflog"
	"github.com/Hermela-code/minigit/internal/refs"
	"github.com/Hermela-code/minigit/internal/worktree"
)

const (
	gitDirName     = ".minigit"
	mergeHeadFile  = "MERGE_HEAD"
	repoPathEnvVar = "MINIGIT_REPOSITORY_PATH"
	defaultBranch  = "main"
	initialMessage = "Initial commit"
)

// Repository is an open working copy: a root directory, its .minigit
// control directory, and every subsystem needed to run the core
// operations.
type Repository struct {
	fs       afero.Fs
	root     string
	gitDir   string
	store    *objects.Store
	refs     *refs.Store
	cfg      *config.Config
	rlog     *reflog.Log
	worktree *worktree.Worktree
	protect  []string
}

func gitDirPath(root string) string {
	return filepath.Join(root, gitDirName)
}

func fileExists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// Init creates a new repository at root. protectList names working
// directory files that Restore must never remove.
func Init(fs afero.Fs, root string, protectList []string) (*Repository, error) {
	gitDir := gitDirPath(root)
	if fileExists(fs, gitDir) {
		return nil, clierr.NewAlreadyInitialized(root)
	}

	if err := fs.MkdirAll(filepath.Join(gitDir, "objects"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create objects directory: %w", err)
	}
	if err := fs.MkdirAll(filepath.Join(gitDir, "refs", "heads"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create refs directory: %w", err)
	}

	store := objects.NewStore(fs, gitDir)
	refStore := refs.NewStore(fs, gitDir)

	cfg, err := config.Load(gitDir)
	if err != nil {
		return nil, err
	}

	idx, err := index.Load(fs, gitDir)
	if err != nil {
		return nil, err
	}
	if err := idx.Persist(); err != nil {
		return nil, err
	}

	rootCommit := objects.NewCommit(initialMessage, timestamp(), nil, map[string]string{}, cfg.Author())
	if _, err := store.PutCommit(rootCommit); err != nil {
		return nil, err
	}

	if err := refStore.CreateBranch(defaultBranch, rootCommit.Hash); err != nil {
		return nil, err
	}
	if err := refStore.WriteHeadSymbolic(defaultBranch); err != nil {
		return nil, err
	}

	rlog := reflog.New(fs, gitDir)
	if err := rlog.Append(defaultBranch, reflog.Entry{
		NewHash:   rootCommit.Hash,
		Author:    cfg.Author(),
		Action:    "commit",
		Details:   initialMessage,
		Timestamp: time.Now().Unix(),
	}); err != nil {
		return nil, err
	}

	return open(fs, root, gitDir, store, refStore, cfg, rlog, protectList), nil
}

func open(fs afero.Fs, root, gitDir string, store *objects.Store, refStore *refs.Store, cfg *config.Config, rlog *reflog.Log, protectList []string) *Repository {
	return &Repository{
		fs:       fs,
		root:     root,
		gitDir:   gitDir,
		store:    store,
		refs:     refStore,
		cfg:      cfg,
		rlog:     rlog,
		worktree: worktree.New(fs, root, gitDir, store, protectList),
		protect:  protectList,
	}
}

// Open searches upward from startDir for a .minigit directory,
// honoring MINIGIT_REPOSITORY_PATH as a forced override, the way the
// teacher's GetVecRoot honors VEC_REPOSITORY_PATH.
func Open(fs afero.Fs, startDir string, protectList []string) (*Repository, error) {
	root, err := findRoot(fs, startDir)
	if err != nil {
		return nil, err
	}
	gitDir := gitDirPath(root)

	store := objects.NewStore(fs, gitDir)
	refStore := refs.NewStore(fs, gitDir)
	cfg, err := config.Load(gitDir)
	if err != nil {
		return nil, err
	}
	rlog := reflog.New(fs, gitDir)

	return open(fs, root, gitDir, store, refStore, cfg, rlog, protectList), nil
}

func findRoot(fs afero.Fs, startDir string) (string, error) {
	if forced := os.Getenv(repoPathEnvVar); forced != "" {
		if fileExists(fs, gitDirPath(forced)) {
			return forced, nil
		}
		return "", clierr.NewNotARepo(forced)
	}

	current := startDir
	for {
		if fileExists(fs, gitDirPath(current)) {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", clierr.NewNotARepo(startDir)
		}
		current = parent
	}
}

func timestamp() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

// Root returns the repository's working directory root.
func (r *Repository) Root() string {
	return r.root
}

// GitDir returns the repository's control directory (.minigit).
func (r *Repository) GitDir() string {
	return r.gitDir
}

func (r *Repository) loadIndex() (*index.Index, error) {
	return index.Load(r.fs, r.gitDir)
}

func (r *Repository) headCommit() (*objects.Commit, error) {
	hash, err := r.refs.ResolveHead()
	if err != nil {
		return nil, err
	}
	if hash == "" {
		return nil, nil
	}
	return r.store.GetCommit(hash)
}

// Add stages each path, hashing its current on-disk content into a
// blob. A missing path is reported but does not abort the batch.
type AddResult struct {
	Staged  []string
	Missing []string
}

func (r *Repository) Add(paths []string) (AddResult, error) {
	idx, err := r.loadIndex()
	if err != nil {
		return AddResult{}, err
	}

	var result AddResult
	for _, p := range paths {
		content, err := afero.ReadFile(r.fs, filepath.Join(r.root, p))
		if err != nil {
			if os.IsNotExist(err) {
				result.Missing = append(result.Missing, p)
				continue
			}
			return AddResult{}, fmt.Errorf("failed to read %s: %w", p, err)
		}

		hash, err := r.store.PutBlob(content)
		if err != nil {
			return AddResult{}, err
		}
		if err := idx.Stage(p, hash); err != nil {
			return AddResult{}, err
		}
		result.Staged = append(result.Staged, p)
	}

	if err := idx.Persist(); err != nil {
		return AddResult{}, err
	}
	return result, nil
}

func (r *Repository) mergeHeadPath() string {
	return filepath.Join(r.gitDir, mergeHeadFile)
}

func (r *Repository) readMergeState() (branch, targetHash string, ok bool, err error) {
	data, err := afero.ReadFile(r.fs, r.mergeHeadPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", false, nil
		}
		return "", "", false, err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		return "", "", false, clierr.NewCorruptStore("malformed MERGE_HEAD", nil)
	}
	return lines[0], lines[1], true, nil
}

func (r *Repository) writeMergeState(branch, targetHash string) error {
	content := fmt.Sprintf("%s\n%s\n", branch, targetHash)
	return afero.WriteFile(r.fs, r.mergeHeadPath(), []byte(content), 0644)
}

func (r *Repository) clearMergeState() error {
	err := r.fs.Remove(r.mergeHeadPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Commit builds a new commit from the current index overlaid on the
// current commit's tree, advances the current branch, and clears the
// index and any pending merge state.
func (r *Repository) Commit(message string) (string, error) {
	head, err := r.refs.ReadHead()
	if err != nil {
		return "", err
	}
	if head.IsDetached() {
		return "", clierr.NewDetachedHEAD()
	}

	idx, err := r.loadIndex()
	if err != nil {
		return "", err
	}
	staged := idx.Snapshot()
	if len(staged) == 0 {
		return "", clierr.NewNothingStaged()
	}

	current, err := r.headCommit()
	if err != nil {
		return "", err
	}

	var parents []string
	tree := map[string]string{}
	if current != nil {
		parents = []string{current.Hash}
		for p, h := range current.Tree {
			tree[p] = h
		}
	}

	_, mergeTarget, inMerge, err := r.readMergeState()
	if err != nil {
		return "", err
	}
	if inMerge {
		parents = append(parents, mergeTarget)
	}

	for p, h := range staged {
		tree[p] = h
	}

	c := objects.NewCommit(message, timestamp(), parents, tree, r.cfg.Author())
	if _, err := r.store.PutCommit(c); err != nil {
		return "", err
	}

	prevHash := ""
	if current != nil {
		prevHash = current.Hash
	}
	if err := r.refs.WriteBranch(head.Branch, c.Hash); err != nil {
		return "", err
	}

	idx.Clear()
	if err := idx.Persist(); err != nil {
		return "", err
	}
	if err := r.clearMergeState(); err != nil {
		return "", err
	}

	if err := r.rlog.Append(head.Branch, reflog.Entry{
		OldHash:   prevHash,
		NewHash:   c.Hash,
		Author:    r.cfg.Author(),
		Action:    "commit",
		Details:   message,
		Timestamp: time.Now().Unix(),
	}); err != nil {
		return "", err
	}

	return c.Hash, nil
}

// LogEntry is one printable line of commit history.
type LogEntry struct {
	Hash      string
	Timestamp string
	Message   string
	Parents   []string
}

// Log walks the first-parent chain from HEAD.
func (r *Repository) Log() ([]LogEntry, error) {
	hash, err := r.refs.ResolveHead()
	if err != nil {
		return nil, err
	}
	var entries []LogEntry
	for hash != "" {
		c, err := r.store.GetCommit(hash)
		if err != nil {
			return nil, err
		}
		entries = append(entries, LogEntry{Hash: c.Hash, Timestamp: c.Timestamp, Message: c.Message, Parents: c.Parents})
		if len(c.Parents) == 0 {
			break
		}
		hash = c.Parents[0]
	}
	return entries, nil
}

// PathStatus is a staged-entry status code as spec.md §6 defines:
// A=added, M=modified, ' '=unchanged, D=staged-deletion.
type PathStatus struct {
	Path string
	Code byte
}

// Status describes HEAD position and the staged-vs-committed diff.
type Status struct {
	Branch   string // empty when detached
	Detached bool
	HeadHash string
	Entries  []PathStatus
	Branches []string
	Current  string
}

func (r *Repository) Status() (Status, error) {
	head, err := r.refs.ReadHead()
	if err != nil {
		return Status{}, err
	}

	var st Status
	if head.IsDetached() {
		st.Detached = true
		st.HeadHash = head.Detached
	} else {
		st.Branch = head.Branch
	}

	current, err := r.headCommit()
	if err != nil {
		return Status{}, err
	}
	baseTree := map[string]string{}
	if current != nil {
		baseTree = current.Tree
		st.HeadHash = current.Hash
	}

	idx, err := r.loadIndex()
	if err != nil {
		return Status{}, err
	}
	staged := idx.Snapshot()

	paths := make(map[string]bool)
	for p := range baseTree {
		paths[p] = true
	}
	for p := range staged {
		paths[p] = true
	}
	var names []string
	for p := range paths {
		names = append(names, p)
	}
	sort.Strings(names)

	// The index has no staged-deletion marker: a path that is absent
	// from the index simply was not touched since the last commit, not
	// removed from it. 'D' therefore only fires for a path the index
	// still names, and nothing else matches that description here — it
	// stays defined so the status line vocabulary matches spec, but
	// this core never emits it.
	for _, p := range names {
		baseHash, inBase := baseTree[p]
		stagedHash, inStaged := staged[p]
		switch {
		case !inBase && inStaged:
			st.Entries = append(st.Entries, PathStatus{Path: p, Code: 'A'})
		case inBase && inStaged && baseHash != stagedHash:
			st.Entries = append(st.Entries, PathStatus{Path: p, Code: 'M'})
		default:
			st.Entries = append(st.Entries, PathStatus{Path: p, Code: ' '})
		}
	}

	branches, err := r.refs.ListBranches()
	if err != nil {
		return Status{}, err
	}
	st.Branches = branches
	st.Current = head.Branch

	return st, nil
}

// CreateBranch creates name pointing at HEAD's current commit.
func (r *Repository) CreateBranch(name string) error {
	hash, err := r.refs.ResolveHead()
	if err != nil {
		return err
	}
	if hash == "" {
		return clierr.NewUsageError("cannot create a branch before the first commit")
	}
	if err := r.refs.CreateBranch(name, hash); err != nil {
		if _, ok := err.(*refs.ErrBranchExists); ok {
			return clierr.NewBranchExists(name)
		}
		return err
	}
	return nil
}

// ListBranches returns all branch names in ascending order.
func (r *Repository) ListBranches() ([]string, error) {
	return r.refs.ListBranches()
}

// resolveTarget resolves a checkout/merge argument to a commit hash,
// a branch name taking precedence over a same-named commit hash.
func (r *Repository) resolveTarget(target string) (hash string, isBranch bool, err error) {
	exists, err := r.refs.BranchExists(target)
	if err != nil {
		return "", false, err
	}
	if exists {
		h, err := r.refs.ReadBranch(target)
		return h, true, err
	}
	if has, _ := r.store.Has(target); has {
		if _, err := r.store.GetCommit(target); err == nil {
			return target, false, nil
		}
	}
	return "", false, clierr.NewUnknownRef(target)
}

// Checkout switches the working tree, index, and HEAD to target,
// which may be a branch name or a commit hash. It refuses to proceed
// over uncommitted changes unless force is true.
func (r *Repository) Checkout(target string, force bool) error {
	idx, err := r.loadIndex()
	if err != nil {
		return err
	}
	current, err := r.headCommit()
	if err != nil {
		return err
	}
	if current != nil && !force {
		clean, err := r.worktree.IsClean(current.Tree)
		if err != nil {
			return err
		}
		if !clean {
			return clierr.NewUsageError("local changes would be overwritten by checkout; commit them or use --force")
		}
	}

	targetHash, isBranch, err := r.resolveTarget(target)
	if err != nil {
		return err
	}
	targetCommit, err := r.store.GetCommit(targetHash)
	if err != nil {
		return err
	}

	prevHash := ""
	if current != nil {
		prevHash = current.Hash
	}

	if isBranch {
		if err := r.refs.WriteHeadSymbolic(target); err != nil {
			return err
		}
	} else {
		if err := r.refs.WriteHeadDetached(targetHash); err != nil {
			return err
		}
	}

	if err := r.worktree.Restore(targetCommit.Tree); err != nil {
		return err
	}

	idx.Clear()
	for p, h := range targetCommit.Tree {
		_ = idx.Stage(p, h)
	}
	if err := idx.Persist(); err != nil {
		return err
	}

	branchForLog := ""
	if isBranch {
		branchForLog = target
	}
	if err := r.rlog.Append(branchForLog, reflog.Entry{
		OldHash:   prevHash,
		NewHash:   targetHash,
		Author:    r.cfg.Author(),
		Action:    "checkout",
		Details:   "moving to " + target,
		Timestamp: time.Now().Unix(),
	}); err != nil {
		return err
	}

	return nil
}

// MergeOutcome reports what Merge did.
type MergeOutcome struct {
	FastForward   bool
	UpToDate      bool
	HasConflicts  bool
	ConflictPaths []string
}

// Merge reconciles branch into the current branch: up-to-date report,
// fast-forward, or three-way reconciliation with conflict markers
// written for any path that could not be resolved automatically.
func (r *Repository) Merge(branch string) (MergeOutcome, error) {
	head, err := r.refs.ReadHead()
	if err != nil {
		return MergeOutcome{}, err
	}
	if head.IsDetached() {
		return MergeOutcome{}, clierr.NewUsageError("cannot merge onto a detached HEAD")
	}
	if head.Branch == branch {
		return MergeOutcome{}, clierr.NewUsageError("cannot merge a branch with itself")
	}

	targetHash, err := r.refs.ReadBranch(branch)
	if err != nil {
		if _, ok := err.(*refs.ErrBranchNotFound); ok {
			return MergeOutcome{}, clierr.NewUnknownRef(branch)
		}
		return MergeOutcome{}, err
	}

	currentHash, err := r.refs.ResolveHead()
	if err != nil {
		return MergeOutcome{}, err
	}
	if currentHash == "" {
		return MergeOutcome{}, clierr.NewUsageError("cannot merge before the first commit")
	}

	idx, err := r.loadIndex()
	if err != nil {
		return MergeOutcome{}, err
	}
	current, err := r.headCommit()
	if err != nil {
		return MergeOutcome{}, err
	}
	clean, err := r.worktree.IsClean(current.Tree)
	if err != nil {
		return MergeOutcome{}, err
	}
	if !clean {
		return MergeOutcome{}, clierr.NewUsageError("uncommitted changes detected; commit or revert them before merging")
	}

	baseHash, err := dag.LCA(r.store, currentHash, targetHash)
	if err != nil {
		return MergeOutcome{}, err
	}

	if baseHash == targetHash {
		return MergeOutcome{UpToDate: true}, nil
	}
	if baseHash == currentHash {
		targetCommit, err := r.store.GetCommit(targetHash)
		if err != nil {
			return MergeOutcome{}, err
		}
		if err := r.worktree.Restore(targetCommit.Tree); err != nil {
			return MergeOutcome{}, err
		}
		if err := r.refs.WriteBranch(head.Branch, targetHash); err != nil {
			return MergeOutcome{}, err
		}
		idx.Clear()
		for p, h := range targetCommit.Tree {
			_ = idx.Stage(p, h)
		}
		if err := idx.Persist(); err != nil {
			return MergeOutcome{}, err
		}
		if err := r.rlog.Append(head.Branch, reflog.Entry{
			OldHash:   currentHash,
			NewHash:   targetHash,
			Author:    r.cfg.Author(),
			Action:    "merge",
			Details:   "fast-forward " + branch,
			Timestamp: time.Now().Unix(),
		}); err != nil {
			return MergeOutcome{}, err
		}
		return MergeOutcome{FastForward: true}, nil
	}

	baseCommit, err := r.store.GetCommit(baseHash)
	if err != nil {
		return MergeOutcome{}, err
	}
	targetCommit, err := r.store.GetCommit(targetHash)
	if err != nil {
		return MergeOutcome{}, err
	}

	outcome := merge.ThreeWay(baseCommit.Tree, current.Tree, targetCommit.Tree)

	var result MergeOutcome
	for _, pr := range outcome.Results {
		switch pr.Resolution {
		case merge.TakeTheirs:
			if err := idx.Stage(pr.Path, pr.ResultHash); err != nil {
				return MergeOutcome{}, err
			}
			content, err := r.store.GetBlob(pr.ResultHash)
			if err != nil {
				return MergeOutcome{}, err
			}
			if err := afero.WriteFile(r.fs, filepath.Join(r.root, pr.Path), content, 0644); err != nil {
				return MergeOutcome{}, err
			}
		case merge.Delete:
			idx.Unstage(pr.Path)
			if err := r.fs.Remove(filepath.Join(r.root, pr.Path)); err != nil && !os.IsNotExist(err) {
				return MergeOutcome{}, err
			}
		case merge.Conflict:
			result.HasConflicts = true
			result.ConflictPaths = append(result.ConflictPaths, pr.Path)
			idx.Unstage(pr.Path)
			var ourContent, theirContent []byte
			if pr.OurHash != "" {
				ourContent, err = r.store.GetBlob(pr.OurHash)
				if err != nil {
					return MergeOutcome{}, err
				}
			}
			if pr.TheirHash != "" {
				theirContent, err = r.store.GetBlob(pr.TheirHash)
				if err != nil {
					return MergeOutcome{}, err
				}
			}
			marked := merge.MarkConflict(ourContent, theirContent)
			if err := afero.WriteFile(r.fs, filepath.Join(r.root, pr.Path), marked, 0644); err != nil {
				return MergeOutcome{}, err
			}
		case merge.TakeOurs, merge.Unchanged:
			// nothing to do: working tree and index already reflect ours.
		}
	}

	if err := idx.Persist(); err != nil {
		return MergeOutcome{}, err
	}
	if err := r.writeMergeState(branch, targetHash); err != nil {
		return MergeOutcome{}, err
	}

	sort.Strings(result.ConflictPaths)
	return result, nil
}
