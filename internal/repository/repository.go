// Package repository ties the object store, refs, index and config of one
// working directory together, and implements the operations that need more
// than one of them: init, write-tree, commit and log.
//
// A single active writer per repository is assumed. Nothing here locks.
package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KostasZigo/rgit/internal/config"
	"github.com/KostasZigo/rgit/internal/constants"
	"github.com/KostasZigo/rgit/internal/objects"
	"github.com/KostasZigo/rgit/internal/refs"
)

var (
	// ErrNotInitialized is returned when no .rgit directory exists where one is required.
	ErrNotInitialized = errors.New("not an rgit repository")

	// ErrAlreadyExists is returned by InitRepository when .rgit is already present.
	ErrAlreadyExists = errors.New("repository already exists")
)

// Repository is an opened working directory with its metadata directory.
type Repository struct {
	root    string
	rgitDir string
	objects *objects.ObjectStore
	refs    *refs.Store
	config  *config.Config
}

// InitRepository creates .rgit under path with objects/, refs/heads, refs/tags,
// an empty index, a default config and HEAD pointing at refs/heads/main.
// Anything created is removed again if a later step fails.
func InitRepository(path string) (*Repository, error) {
	rgitDir := filepath.Join(path, constants.Rgit)

	if err := checkRepositoryDoesNotExist(rgitDir); err != nil {
		return nil, err
	}

	// Cleared once every file is in place
	var initSuccess bool
	defer func() {
		if !initSuccess {
			cleanupRepository(rgitDir)
		}
	}()

	if err := os.Mkdir(rgitDir, constants.DirPerms); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", rgitDir, err)
	}

	directories := []string{
		filepath.Join(rgitDir, constants.Objects),
		filepath.Join(rgitDir, constants.Refs, constants.Heads),
		filepath.Join(rgitDir, constants.Refs, constants.Tags),
	}
	for _, directory := range directories {
		if err := os.MkdirAll(directory, constants.DirPerms); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", directory, err)
		}
	}

	if err := os.WriteFile(filepath.Join(rgitDir, constants.Index), nil, constants.FilePerms); err != nil {
		return nil, fmt.Errorf("failed to create %s file: %w", constants.Index, err)
	}

	if err := config.Default().Save(filepath.Join(rgitDir, constants.Config)); err != nil {
		return nil, err
	}

	refStore := refs.NewStore(rgitDir)
	if err := refStore.SymbolicRef(constants.Head, constants.Refs+"/"+constants.Heads+"/"+constants.DefaultBranch); err != nil {
		return nil, fmt.Errorf("failed to create %s file: %w", constants.Head, err)
	}

	repo, err := Open(path)
	if err != nil {
		return nil, err
	}

	initSuccess = true
	slog.Debug("Initialized repository",
		"path", rgitDir)
	return repo, nil
}

func checkRepositoryDoesNotExist(path string) error {
	_, err := os.Stat(path)

	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check repository path: %w", err)
	}

	return fmt.Errorf("%w at %s", ErrAlreadyExists, path)
}

// cleanupRepository removes a partially initialized .rgit directory.
func cleanupRepository(rgitDir string) {
	if _, err := os.Stat(rgitDir); err != nil {
		return
	}

	slog.Debug("Cleaning up partial repository initialization",
		"path", rgitDir)

	if err := os.RemoveAll(rgitDir); err != nil {
		slog.Warn("Failed to cleanup repository directory",
			"path", rgitDir,
			"error", err)
	}
}

// Open opens the repository whose working directory is path.
func Open(path string) (*Repository, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	rgitDir := filepath.Join(root, constants.Rgit)
	info, err := os.Stat(rgitDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotInitialized, root)
	}

	cfg, err := config.Load(filepath.Join(rgitDir, constants.Config))
	if err != nil {
		return nil, err
	}

	return &Repository{
		root:    root,
		rgitDir: rgitDir,
		objects: objects.NewObjectStoreWithCacheSize(root, cfg.Core.ObjectCacheSize),
		refs:    refs.NewStore(rgitDir),
		config:  cfg,
	}, nil
}

// Find opens the nearest repository at or above start.
func Find(start string) (*Repository, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", start, err)
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, constants.Rgit)); err == nil && info.IsDir() {
			return Open(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("%w (or any of the parent directories): %s", ErrNotInitialized, start)
		}
		dir = parent
	}
}

// Root returns the working directory.
func (r *Repository) Root() string {
	return r.root
}

// RgitDir returns the metadata directory.
func (r *Repository) RgitDir() string {
	return r.rgitDir
}

func (r *Repository) Objects() *objects.ObjectStore {
	return r.objects
}

func (r *Repository) Refs() *refs.Store {
	return r.refs
}

func (r *Repository) Config() *config.Config {
	return r.config
}

func (r *Repository) IndexPath() string {
	return filepath.Join(r.rgitDir, constants.Index)
}

func (r *Repository) ConfigPath() string {
	return filepath.Join(r.rgitDir, constants.Config)
}

// SaveConfig persists the in-memory config.
func (r *Repository) SaveConfig() error {
	return r.config.Save(r.ConfigPath())
}
