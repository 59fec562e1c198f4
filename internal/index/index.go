// Package index implements the staging area: a mapping of working-tree
// relative paths to blob hashes, persisted as one "path hash" line per entry.
//
// The whole file is read, mutated and rewritten on every operation.
// There is no locking; concurrent writers race and the last one wins.
package index

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/KostasZigo/rgit/internal/constants"
)

var (
	// ErrNotStaged is returned when modifying or removing a path absent from the index.
	ErrNotStaged = errors.New("not staged")

	// ErrInvalidPath rejects paths the line format cannot represent.
	ErrInvalidPath = errors.New("invalid index path")
)

// Entry is a single staged path.
type Entry struct {
	Path string
	Hash string
}

// Index is an in-memory copy of the staging file.
type Index struct {
	path    string
	entries map[string]string
}

// New returns an empty index that will be saved to path.
func New(path string) *Index {
	return &Index{
		path:    path,
		entries: make(map[string]string),
	}
}

// Load reads the index file at path. A missing file is an empty index.
func Load(path string) (*Index, error) {
	idx := New(path)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	idx.parse(data)
	return idx, nil
}

// Update loads the index at path, applies fn and saves the result.
// Nothing is written when fn fails.
func Update(path string, fn func(*Index) error) error {
	idx, err := Load(path)
	if err != nil {
		return err
	}
	if err := fn(idx); err != nil {
		return err
	}
	return idx.Save()
}

func (idx *Index) parse(data []byte) {
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) != 2 {
			slog.Warn("Skipping invalid index entry",
				"line", line)
			continue
		}
		idx.entries[parts[0]] = parts[1]
	}
}

// Save rewrites the whole index file.
func (idx *Index) Save() error {
	if err := os.WriteFile(idx.path, idx.Serialize(), constants.FilePerms); err != nil {
		return fmt.Errorf("failed to update index: %w", err)
	}
	return nil
}

// Add stages path at hash, overwriting any previous entry.
func (idx *Index) Add(path, hash string) error {
	if err := validatePath(path); err != nil {
		return err
	}
	idx.entries[path] = hash
	slog.Debug("Added or updated index entry",
		"path", path,
		"hash", hash)
	return nil
}

// Modify overwrites the hash of an already staged path.
func (idx *Index) Modify(path, hash string) error {
	if _, ok := idx.entries[path]; !ok {
		return fmt.Errorf("file %s: %w", path, ErrNotStaged)
	}
	idx.entries[path] = hash
	slog.Debug("Updated index entry",
		"path", path,
		"hash", hash)
	return nil
}

// Remove unstages path.
func (idx *Index) Remove(path string) error {
	if _, ok := idx.entries[path]; !ok {
		return fmt.Errorf("file %s: %w", path, ErrNotStaged)
	}
	delete(idx.entries, path)
	slog.Debug("Removed index entry",
		"path", path)
	return nil
}

// Get returns the staged hash of path.
func (idx *Index) Get(path string) (string, bool) {
	hash, ok := idx.entries[path]
	return hash, ok
}

func (idx *Index) Len() int {
	return len(idx.entries)
}

func (idx *Index) IsEmpty() bool {
	return len(idx.entries) == 0
}

// Clear drops every entry. Call Save to persist.
func (idx *Index) Clear() {
	clear(idx.entries)
}

// Entries returns all entries sorted by path.
func (idx *Index) Entries() []Entry {
	entries := make([]Entry, 0, len(idx.entries))
	for path, hash := range idx.entries {
		entries = append(entries, Entry{Path: path, Hash: hash})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Path, b.Path)
	})
	return entries
}

// Serialize renders the "path hash\n" lines sorted by path.
func (idx *Index) Serialize() []byte {
	var buf bytes.Buffer
	for _, entry := range idx.Entries() {
		buf.WriteString(entry.Path)
		buf.WriteByte(' ')
		buf.WriteString(entry.Hash)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func validatePath(path string) error {
	if path == "" || strings.ContainsAny(path, " \t\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return nil
}
