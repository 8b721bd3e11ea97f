package objects

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

// Commit is an immutable snapshot record. Hash is a function of
// (Message, Timestamp, Parents in order, Tree entries sorted by path) —
// Author is carried as metadata but does not participate in the hash,
// matching the original implementation's commitData composition.
type Commit struct {
	Hash      string
	Message   string
	Timestamp string
	Parents   []string
	Tree      map[string]string
	Author    string
}

func writeLPString(buf *bytes.Buffer, s string) {
	b := []byte(s)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
	buf.Write(lenBuf[:])
	buf.Write(b)
}

func readLPString(r *bytes.Reader) (string, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	b := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, b); err != nil {
			return "", err
		}
	}
	return string(b), nil
}

// sortedPaths returns the commit's tree paths in ascending order.
func sortedPaths(tree map[string]string) []string {
	paths := make([]string, 0, len(tree))
	for p := range tree {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// canonicalPayload encodes exactly the fields that participate in the
// commit hash: message, timestamp, parents in order, tree entries
// sorted by path. This is the byte sequence passed to Hash.
func canonicalPayload(message, timestamp string, parents []string, tree map[string]string) []byte {
	var buf bytes.Buffer
	writeLPString(&buf, message)
	writeLPString(&buf, timestamp)

	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(parents)))
	buf.Write(countBuf[:])
	for _, p := range parents {
		writeLPString(&buf, p)
	}

	paths := sortedPaths(tree)
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(paths)))
	buf.Write(countBuf[:])
	for _, p := range paths {
		writeLPString(&buf, p)
		writeLPString(&buf, tree[p])
	}

	return buf.Bytes()
}

// NewCommit computes a commit's hash from its hashed fields and returns
// the fully populated Commit. It does not write anything to the store.
func NewCommit(message, timestamp string, parents []string, tree map[string]string, author string) *Commit {
	payload := canonicalPayload(message, timestamp, parents, tree)
	return &Commit{
		Hash:      Hash(payload),
		Message:   message,
		Timestamp: timestamp,
		Parents:   append([]string{}, parents...),
		Tree:      tree,
		Author:    author,
	}
}

// serialize returns the on-disk record: the canonical (hashed) payload
// followed by the author, which is metadata only.
func (c *Commit) serialize() []byte {
	payload := canonicalPayload(c.Message, c.Timestamp, c.Parents, c.Tree)
	var buf bytes.Buffer
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	buf.Write(lenBuf[:])
	buf.Write(payload)
	writeLPString(&buf, c.Author)
	return buf.Bytes()
}

func deserializeCommit(hash string, data []byte) (*Commit, error) {
	r := bytes.NewReader(data)

	var payloadLen [4]byte
	if _, err := io.ReadFull(r, payloadLen[:]); err != nil {
		return nil, fmt.Errorf("truncated commit record: %w", err)
	}
	n := binary.LittleEndian.Uint32(payloadLen[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("truncated commit payload: %w", err)
	}

	if got := Hash(payload); got != hash {
		return nil, &ErrCorrupt{Hash: hash, Reason: fmt.Sprintf("payload hashes to %s", got)}
	}

	author, err := readLPString(r)
	if err != nil {
		return nil, fmt.Errorf("truncated commit author: %w", err)
	}

	pr := bytes.NewReader(payload)
	message, err := readLPString(pr)
	if err != nil {
		return nil, err
	}
	timestamp, err := readLPString(pr)
	if err != nil {
		return nil, err
	}

	var count [4]byte
	if _, err := io.ReadFull(pr, count[:]); err != nil {
		return nil, err
	}
	parentCount := binary.LittleEndian.Uint32(count[:])
	parents := make([]string, parentCount)
	for i := range parents {
		parents[i], err = readLPString(pr)
		if err != nil {
			return nil, err
		}
	}

	if _, err := io.ReadFull(pr, count[:]); err != nil {
		return nil, err
	}
	entryCount := binary.LittleEndian.Uint32(count[:])
	tree := make(map[string]string, entryCount)
	for i := uint32(0); i < entryCount; i++ {
		path, err := readLPString(pr)
		if err != nil {
			return nil, err
		}
		blobHash, err := readLPString(pr)
		if err != nil {
			return nil, err
		}
		tree[path] = blobHash
	}

	return &Commit{
		Hash:      hash,
		Message:   message,
		Timestamp: timestamp,
		Parents:   parents,
		Tree:      tree,
		Author:    author,
	}, nil
}

// PutCommit persists c and returns its hash. The hash must already be
// set by NewCommit; PutCommit recomputes it from the canonical payload
// and fails if the caller mutated hashed fields after construction.
func (s *Store) PutCommit(c *Commit) (string, error) {
	expected := Hash(canonicalPayload(c.Message, c.Timestamp, c.Parents, c.Tree))
	if c.Hash != expected {
		return "", fmt.Errorf("commit hash %s does not match its canonical payload (%s)", c.Hash, expected)
	}
	if err := s.putRaw(c.Hash, c.serialize()); err != nil {
		return "", err
	}
	return c.Hash, nil
}

// GetCommit loads the commit stored under hash.
func (s *Store) GetCommit(hash string) (*Commit, error) {
	data, err := s.readRaw(hash)
	if err != nil {
		return nil, err
	}
	return deserializeCommit(hash, data)
}
