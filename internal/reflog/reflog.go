// Package reflog records an append-only history of where HEAD and
// each branch have pointed, independent of the commit DAG itself.
package reflog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	zeroHash    = "0000000000000000"
	headLogPath = "logs/HEAD"
	headsLogDir = "logs/refs/heads"
)

// Log appends entries to .minigit/logs/HEAD and, for symbolic moves,
// to .minigit/logs/refs/heads/<branch>.
type Log struct {
	fs     afero.Fs
	gitDir string
}

// New returns a Log rooted at gitDir.
func New(fs afero.Fs, gitDir string) *Log {
	return &Log{fs: fs, gitDir: gitDir}
}

// Entry is one reflog line: the move from oldHash to newHash, who did
// it, what action, and optional details.
type Entry struct {
	OldHash   string
	NewHash   string
	Author    string
	Action    string
	Details   string
	Timestamp int64
}

func (e Entry) render() string {
	old := e.OldHash
	if old == "" {
		old = zeroHash
	}
	if e.Details != "" {
		return fmt.Sprintf("%s %s %s %d\t%s: %s\n", old, e.NewHash, e.Author, e.Timestamp, e.Action, e.Details)
	}
	return fmt.Sprintf("%s %s %s %d\t%s\n", old, e.NewHash, e.Author, e.Timestamp, e.Action)
}

func (l *Log) appendTo(path, line string) error {
	if err := l.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create reflog directory: %w", err)
	}
	existing, err := afero.ReadFile(l.fs, path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read reflog %s: %w", path, err)
	}
	updated := append(existing, []byte(line)...)
	return afero.WriteFile(l.fs, path, updated, 0644)
}

// Append records entry against HEAD, and additionally against branch
// if this move was a symbolic move onto a named branch (branch == ""
// means the move left HEAD detached, recorded only under HEAD).
func (l *Log) Append(branch string, entry Entry) error {
	line := entry.render()

	headPath := filepath.Join(l.gitDir, headLogPath)
	if err := l.appendTo(headPath, line); err != nil {
		return err
	}

	if branch != "" {
		branchPath := filepath.Join(l.gitDir, headsLogDir, branch)
		if err := l.appendTo(branchPath, line); err != nil {
			return err
		}
	}
	return nil
}

// ReadHead returns the raw lines of the HEAD reflog, oldest first.
func (l *Log) ReadHead() ([]string, error) {
	return l.readLines(filepath.Join(l.gitDir, headLogPath))
}

// ReadBranch returns the raw lines of a branch's reflog, oldest first.
func (l *Log) ReadBranch(branch string) ([]string, error) {
	return l.readLines(filepath.Join(l.gitDir, headsLogDir, branch))
}

func (l *Log) readLines(path string) ([]string, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	content := strings.TrimRight(string(data), "\n")
	if content == "" {
		return nil, nil
	}
	return strings.Split(content, "\n"), nil
}
