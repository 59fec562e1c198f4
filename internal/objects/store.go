package objects

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/KostasZigo/rgit/internal/constants"
	"github.com/KostasZigo/rgit/utils"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ObjectStore manages storage of objects under <repo>/.rgit/objects.
// A single writer per repository is assumed; object writes themselves are
// idempotent, so concurrent writers of the same content cannot corrupt a file.
type ObjectStore struct {
	repoPath   string // Path to repository root
	objectsDir string
	cache      *lru.Cache[string, *RawObject]
}

func NewObjectStore(repoPath string) *ObjectStore {
	return NewObjectStoreWithCacheSize(repoPath, constants.DefaultObjectCacheSize)
}

// NewObjectStoreWithCacheSize creates a store that keeps up to cacheSize decoded
// objects in memory. A non-positive size disables the cache.
func NewObjectStoreWithCacheSize(repoPath string, cacheSize int) *ObjectStore {
	store := &ObjectStore{
		repoPath:   repoPath,
		objectsDir: filepath.Join(repoPath, constants.Rgit, constants.Objects),
	}

	if cacheSize > 0 {
		cache, err := lru.New[string, *RawObject](cacheSize)
		if err != nil {
			slog.Warn("Object cache disabled",
				"size", cacheSize,
				"error", err)
		} else {
			store.cache = cache
		}
	}

	return store
}

// ObjectPath maps a hash to objectsDir/<first 2 chars>/<remaining 38>.
// It is a pure computation and never touches the filesystem.
func ObjectPath(objectsDir, hash string) string {
	return filepath.Join(objectsDir, hash[:constants.HashDirPrefixLength], hash[constants.HashDirPrefixLength:])
}

// Dir returns the objects directory this store reads and writes.
func (store *ObjectStore) Dir() string {
	return store.objectsDir
}

// Path returns the location of hash without creating anything.
func (store *ObjectStore) Path(hash string) (string, error) {
	if err := validateHash(hash); err != nil {
		return "", err
	}
	return ObjectPath(store.objectsDir, hash), nil
}

// createObjectPath returns the location of hash, creating its shard directory on demand.
func (store *ObjectStore) createObjectPath(hash string) (string, error) {
	objectFile, err := store.Path(hash)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(objectFile), constants.DirPerms); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	return objectFile, nil
}

// Store saves an object to .rgit/objects/<first 2 chars>/<rest>
// Returns nil if object already exists
func (store *ObjectStore) Store(object Object) error {
	hash := object.Hash()

	if store.Exists(hash) {
		slog.Debug("Object with this hash already exists",
			"hash", hash)
		return nil
	}

	compressedData, err := Compress(object.Data())
	if err != nil {
		return fmt.Errorf("failed to compress object: %w", err)
	}

	return store.writeObjectFile(hash, compressedData)
}

// Write hashes content as objectType, stores it, and returns the hash.
func (store *ObjectStore) Write(objectType utils.ObjectType, content []byte) (string, error) {
	hash, err := utils.ComputeHash(content, objectType)
	if err != nil {
		return "", err
	}

	if store.Exists(hash) {
		slog.Debug("Object with this hash already exists",
			"hash", hash)
		return hash, nil
	}

	compressedData, err := Compress(Encode(objectType, content))
	if err != nil {
		return "", fmt.Errorf("failed to compress object: %w", err)
	}

	if err := store.writeObjectFile(hash, compressedData); err != nil {
		return "", err
	}
	return hash, nil
}

// StoreRaw writes compressed bytes received from another repository.
// The bytes are decoded and re-hashed first; a mismatch is rejected as malformed.
func (store *ObjectStore) StoreRaw(hash string, compressed []byte) error {
	if err := validateHash(hash); err != nil {
		return err
	}
	if store.Exists(hash) {
		slog.Debug("Object with this hash already exists",
			"hash", hash)
		return nil
	}

	if _, err := DecodeCompressed(hash, compressed); err != nil {
		return err
	}

	return store.writeObjectFile(hash, compressed)
}

// writeObjectFile writes through a temp file and rename so a failed write never leaves a torn object.
func (store *ObjectStore) writeObjectFile(hash string, compressedData []byte) error {
	objectFile, err := store.createObjectPath(hash)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(objectFile), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp object file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(compressedData); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write object file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write object file: %w", err)
	}
	if err := os.Chmod(tmpName, constants.FilePerms); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write object file: %w", err)
	}
	if err := os.Rename(tmpName, objectFile); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write object file: %w", err)
	}

	return nil
}

// ReadCompressed returns the stored zlib bytes of hash unchanged.
func (store *ObjectStore) ReadCompressed(hash string) ([]byte, error) {
	objectFile, err := store.Path(hash)
	if err != nil {
		return nil, err
	}

	compressedData, err := os.ReadFile(objectFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{Hash: hash}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read object file %s: %w", hash, err)
	}

	return compressedData, nil
}

// Read reads and decodes an object of any type by hash
func (store *ObjectStore) Read(hash string) (*RawObject, error) {
	if store.cache != nil {
		if object, ok := store.cache.Get(hash); ok {
			return object, nil
		}
	}

	compressedData, err := store.ReadCompressed(hash)
	if err != nil {
		return nil, err
	}

	object, err := DecodeCompressed(hash, compressedData)
	if err != nil {
		return nil, err
	}

	if store.cache != nil {
		store.cache.Add(hash, object)
	}
	return object, nil
}

func (store *ObjectStore) readTyped(hash string, want utils.ObjectType) (*RawObject, error) {
	object, err := store.Read(hash)
	if err != nil {
		return nil, err
	}
	if object.Type != want {
		return nil, fmt.Errorf("%w: object %s: type mismatch: got %q, want %q", ErrMalformedObject, hash, object.Type, want)
	}
	return object, nil
}

// ReadBlob reads a blob from storage by hash
func (store *ObjectStore) ReadBlob(hash string) (*Blob, error) {
	object, err := store.readTyped(hash, utils.BlobObjectType)
	if err != nil {
		return nil, err
	}
	return &Blob{content: object.Content, hash: object.Hash}, nil
}

// ReadTree reads and parses a tree from storage by hash
func (store *ObjectStore) ReadTree(hash string) (*Tree, error) {
	object, err := store.readTyped(hash, utils.TreeObjectType)
	if err != nil {
		return nil, err
	}
	return ParseTree(hash, object.Content)
}

// ReadCommit reads and parses a commit from storage by hash
func (store *ObjectStore) ReadCommit(hash string) (*Commit, error) {
	object, err := store.readTyped(hash, utils.CommitObjectType)
	if err != nil {
		return nil, err
	}
	return ParseCommit(hash, object.Content)
}

// Exists checks if an object exists in storage
func (store *ObjectStore) Exists(hash string) bool {
	objectFile, err := store.Path(hash)
	if err != nil {
		return false
	}
	_, err = os.Stat(objectFile)
	return err == nil
}

// Has is Exists with an error result, satisfying presence checks that may fail remotely.
func (store *ObjectStore) Has(hash string) (bool, error) {
	return store.Exists(hash), nil
}

// List returns every stored hash in ascending order.
func (store *ObjectStore) List() ([]string, error) {
	return ListObjects(store.objectsDir)
}

// ListObjects walks an objects directory and reassembles hashes from shard and file names.
// Temp files and anything that does not form a valid hash are ignored.
func ListObjects(objectsDir string) ([]string, error) {
	shards, err := os.ReadDir(objectsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list objects directory: %w", err)
	}

	var hashes []string
	for _, shard := range shards {
		if !shard.IsDir() || len(shard.Name()) != constants.HashDirPrefixLength {
			continue
		}

		files, err := os.ReadDir(filepath.Join(objectsDir, shard.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to list object shard %s: %w", shard.Name(), err)
		}

		for _, file := range files {
			hash := shard.Name() + file.Name()
			if file.IsDir() || !utils.IsValidHash(hash) {
				continue
			}
			hashes = append(hashes, hash)
		}
	}

	slices.Sort(hashes)
	return hashes, nil
}
