package objects

import (
	"bytes"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/KostasZigo/rgit/utils"
)

type FileMode string

const (
	ModeRegularFile FileMode = "100644" // Regular non-executable file
	ModeExecutable  FileMode = "100755" // Executable file
	ModeSymlink     FileMode = "120000" // Symbolic link
	ModeDirectory   FileMode = "040000" // Directory (tree)
)

func (m FileMode) IsValid() bool {
	switch m {
	case ModeRegularFile, ModeExecutable, ModeSymlink, ModeDirectory:
		return true
	default:
		return false
	}
}

// TreeEntry represents a single line of a tree object
type TreeEntry struct {
	mode       FileMode
	objectType utils.ObjectType
	hash       string
	name       string
}

func NewTreeEntry(mode FileMode, objectType utils.ObjectType, name string, hash string) (*TreeEntry, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("invalid file mode: %s", mode)
	}
	if objectType != utils.BlobObjectType && objectType != utils.TreeObjectType {
		return nil, fmt.Errorf("invalid tree entry type: %s", objectType)
	}
	if name == "" || strings.ContainsAny(name, "\n\x00") {
		return nil, fmt.Errorf("invalid tree entry name: %q", name)
	}
	if err := validateHash(hash); err != nil {
		return nil, fmt.Errorf("tree entry %s: %w", name, err)
	}
	return &TreeEntry{
		mode:       mode,
		objectType: objectType,
		hash:       hash,
		name:       name,
	}, nil
}

// NewBlobEntry creates a regular-file entry, the only kind the index produces.
func NewBlobEntry(name, hash string) (*TreeEntry, error) {
	return NewTreeEntry(ModeRegularFile, utils.BlobObjectType, name, hash)
}

func (e *TreeEntry) Mode() FileMode {
	return e.mode
}

func (e *TreeEntry) Type() utils.ObjectType {
	return e.objectType
}

func (e *TreeEntry) Name() string {
	return e.name
}

func (e *TreeEntry) Hash() string {
	return e.hash
}

func (e *TreeEntry) IsDirectory() bool {
	return e.objectType == utils.TreeObjectType
}

func (e *TreeEntry) IsBlob() bool {
	return e.objectType == utils.BlobObjectType
}

// Tree represents a stored directory listing
type Tree struct {
	entries []TreeEntry
	content []byte
	hash    string
}

// NewTree creates a tree object from the list of Tree Entries
func NewTree(treeEntries []TreeEntry) (*Tree, error) {
	// Entries are sorted by name so equal listings always hash the same
	entries := make([]TreeEntry, len(treeEntries))
	copy(entries, treeEntries)

	slices.SortStableFunc(entries, compareTreeEntries)

	treeContent := buildTreeContent(entries)
	hash, err := utils.ComputeHash(treeContent, utils.TreeObjectType)
	if err != nil {
		return nil, fmt.Errorf("failed to compute hash for tree: %v", err)
	}

	return &Tree{
		entries: entries,
		content: treeContent,
		hash:    hash,
	}, nil
}

// ParseTree decodes tree content read back from the store.
// Entries keep their stored order; lines with fewer than four fields are skipped.
func ParseTree(hash string, content []byte) (*Tree, error) {
	var entries []TreeEntry

	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.SplitN(line, " ", 4)
		if len(parts) < 4 {
			slog.Warn("Skipping malformed tree line",
				"tree", hash,
				"line", line)
			continue
		}

		entry, err := NewTreeEntry(FileMode(parts[0]), utils.ObjectType(parts[1]), parts[3], parts[2])
		if err != nil {
			return nil, fmt.Errorf("%w: tree %s: %v", ErrMalformedObject, hash, err)
		}
		entries = append(entries, *entry)
	}

	return &Tree{
		entries: entries,
		content: content,
		hash:    hash,
	}, nil
}

// compareTreeEntries sorts by name, treating directory names as if they had a trailing "/"
func compareTreeEntries(a, b TreeEntry) int {
	return strings.Compare(getSortableName(a), getSortableName(b))
}

func getSortableName(entry TreeEntry) string {
	if entry.IsDirectory() {
		return entry.Name() + "/"
	}
	return entry.Name()
}

// buildTreeContent creates the textual tree content, one line per entry:
// <mode> <type> <hash> <name>
// 100644 blob 3b18e512dba79e4c8300dd08aeb37f8e728b8dad hello.txt
func buildTreeContent(entries []TreeEntry) []byte {
	var buf bytes.Buffer

	for _, entry := range entries {
		fmt.Fprintf(&buf, "%s %s %s %s\n", entry.Mode(), entry.Type(), entry.Hash(), entry.Name())
	}

	return buf.Bytes()
}

// Hash returns the SHA-1 hash of the tree
func (t *Tree) Hash() string {
	return t.hash
}

func (t *Tree) Type() utils.ObjectType {
	return utils.TreeObjectType
}

// Entries returns all tree entries
func (t *Tree) Entries() []TreeEntry {
	return t.entries
}

// Size returns the size of the tree content
func (t *Tree) Size() int {
	return len(t.content)
}

// Content returns the raw tree content
func (t *Tree) Content() []byte {
	return t.content
}

// Header returns the object header
func (t *Tree) Header() string {
	return utils.ObjectHeader(utils.TreeObjectType, t.Size())
}

func (t *Tree) Data() []byte {
	return Encode(utils.TreeObjectType, t.content)
}

// String returns a human-readable representation
func (t *Tree) String() string {
	return fmt.Sprintf("Tree{hash: %s, entries: %d}", t.hash, len(t.entries))
}

// FindEntry finds an entry by name
func (t *Tree) FindEntry(name string) (*TreeEntry, bool) {
	for _, entry := range t.entries {
		if entry.Name() == name {
			return &entry, true
		}
	}
	return nil, false
}
