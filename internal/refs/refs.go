// Package refs stores named pointers to commits under the repository
// metadata directory. A ref file holds either a commit hash (direct ref) or
// "ref: <path>" (symbolic ref, normally only HEAD).
package refs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/KostasZigo/rgit/internal/constants"
	"github.com/KostasZigo/rgit/utils"
)

var (
	// ErrRefNotFound is returned when a ref that must exist, such as HEAD, is absent.
	ErrRefNotFound = errors.New("ref not found")

	// ErrSymbolicRefLoop is returned when symbolic refs nest deeper than MaxSymbolicDepth.
	ErrSymbolicRefLoop = errors.New("symbolic ref chain too deep")

	// ErrInvalidRefName rejects empty, absolute or escaping names.
	ErrInvalidRefName = errors.New("invalid ref name")

	// ErrCorruptRef is returned when a direct ref holds something other than a commit hash.
	ErrCorruptRef = errors.New("corrupt ref")
)

// Resolution is the outcome of following a ref to a commit.
type Resolution struct {
	// Hash is the commit the ref points to; empty means no commits yet.
	Hash string

	// Target is the last ref in the chain, the one a new commit should update.
	Target string

	// Symbolic is true when at least one "ref: " indirection was followed.
	Symbolic bool
}

// Store reads and writes refs relative to a metadata directory (.rgit).
type Store struct {
	root string
}

func NewStore(rgitDir string) *Store {
	return &Store{root: rgitDir}
}

func (s *Store) refPath(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRefName, name)
	}

	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRefName, name)
	}

	return filepath.Join(s.root, cleaned), nil
}

func (s *Store) write(name, content string) error {
	path, err := s.refPath(name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), constants.DirPerms); err != nil {
		return fmt.Errorf("failed to create parent directories for ref %s: %w", name, err)
	}

	if err := os.WriteFile(path, []byte(content+"\n"), constants.FilePerms); err != nil {
		return fmt.Errorf("failed to update ref %s: %w", name, err)
	}
	return nil
}

// UpdateRef points name directly at hash.
func (s *Store) UpdateRef(name, hash string) error {
	if !utils.IsValidHash(hash) {
		return fmt.Errorf("%w: %s -> %q", ErrCorruptRef, name, hash)
	}
	return s.write(name, hash)
}

// SymbolicRef makes name an alias of target, e.g. HEAD -> refs/heads/main.
func (s *Store) SymbolicRef(name, target string) error {
	if _, err := s.refPath(target); err != nil {
		return err
	}
	return s.write(name, constants.SymbolicRefPrefix+filepath.ToSlash(target))
}

// ReadRef returns the trimmed content of name.
// A missing ref file yields "" and no error: the branch has no commits yet.
func (s *Store) ReadRef(name string) (string, error) {
	path, err := s.refPath(name)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read ref %s: %w", name, err)
	}

	return strings.TrimSpace(string(data)), nil
}

// Exists reports whether a ref file named name is present.
func (s *Store) Exists(name string) bool {
	path, err := s.refPath(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Resolve follows name through symbolic refs to a commit hash.
func (s *Store) Resolve(name string) (Resolution, error) {
	resolution := Resolution{Target: name}

	for depth := 0; ; depth++ {
		if depth > constants.MaxSymbolicDepth {
			return Resolution{}, fmt.Errorf("%w: starting at %s", ErrSymbolicRefLoop, name)
		}

		content, err := s.ReadRef(resolution.Target)
		if err != nil {
			return Resolution{}, err
		}

		if target, ok := strings.CutPrefix(content, constants.SymbolicRefPrefix); ok {
			resolution.Target = strings.TrimSpace(target)
			resolution.Symbolic = true
			continue
		}

		if content != "" && !utils.IsValidHash(content) {
			return Resolution{}, fmt.Errorf("%w: %s holds %q", ErrCorruptRef, resolution.Target, content)
		}

		resolution.Hash = content
		return resolution, nil
	}
}

// ResolveHead resolves HEAD. HEAD itself must exist; the branch it names need not.
func (s *Store) ResolveHead() (Resolution, error) {
	if !s.Exists(constants.Head) {
		return Resolution{}, fmt.Errorf("%w: %s", ErrRefNotFound, constants.Head)
	}
	return s.Resolve(constants.Head)
}

// List returns direct refs under refs/<prefix>, keyed by name relative to the metadata directory.
func (s *Store) List(prefix string) (map[string]string, error) {
	root := filepath.Join(s.root, constants.Refs)
	dir := root
	if strings.TrimSpace(prefix) != "" {
		dir = filepath.Join(root, filepath.FromSlash(prefix))
	}

	refs := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		refs[filepath.ToSlash(rel)] = strings.TrimSpace(string(data))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list refs: %w", err)
	}
	return refs, nil
}
