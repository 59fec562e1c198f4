package sync

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KostasZigo/rgit/internal/constants"
	"github.com/KostasZigo/rgit/internal/objects"
	"github.com/KostasZigo/rgit/internal/refs"
	"github.com/KostasZigo/rgit/utils"
)

// ErrNotARepository is returned when a transport location holds no objects directory.
var ErrNotARepository = errors.New("remote is not an rgit repository")

// ObjectTransport moves stored objects and branch tips to and from another repository.
// Object bytes are the compressed on-disk form, unchanged.
type ObjectTransport interface {
	// List returns every object hash the remote holds.
	List() ([]string, error)

	// Fetch returns the stored bytes of hash. A missing object matches objects.ErrObjectNotFound.
	Fetch(hash string) ([]byte, error)

	// Put stores data under hash. Storing an existing hash is a no-op.
	Put(hash string, data []byte) error

	// ReadRef returns the hash a ref holds, "" if the ref does not exist.
	ReadRef(name string) (string, error)

	// UpdateRef points a ref at hash.
	UpdateRef(name, hash string) error
}

// FileTransport reaches a repository through a local or mounted filesystem path.
// Computing a path never creates anything; only Put creates shard directories.
type FileTransport struct {
	root       string
	objectsDir string
	refs       *refs.Store
}

// NewFileTransport opens the repository metadata directory at path. Both the
// metadata directory itself and a working directory containing .rgit are accepted.
func NewFileTransport(path string) (*FileTransport, error) {
	root := path
	if !isDir(filepath.Join(root, constants.Objects)) {
		root = filepath.Join(path, constants.Rgit)
		if !isDir(filepath.Join(root, constants.Objects)) {
			return nil, fmt.Errorf("%w: %s", ErrNotARepository, path)
		}
	}

	return &FileTransport{
		root:       root,
		objectsDir: filepath.Join(root, constants.Objects),
		refs:       refs.NewStore(root),
	}, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Root returns the remote metadata directory.
func (t *FileTransport) Root() string {
	return t.root
}

func (t *FileTransport) objectPath(hash string) (string, error) {
	if !utils.IsValidHash(hash) {
		return "", fmt.Errorf("%w: %q", objects.ErrInvalidHash, hash)
	}
	return objects.ObjectPath(t.objectsDir, hash), nil
}

func (t *FileTransport) List() ([]string, error) {
	return objects.ListObjects(t.objectsDir)
}

func (t *FileTransport) Fetch(hash string) ([]byte, error) {
	path, err := t.objectPath(hash)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &objects.NotFoundError{Hash: hash}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch object %s: %w", hash, err)
	}
	return data, nil
}

func (t *FileTransport) Put(hash string, data []byte) error {
	path, err := t.objectPath(hash)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		slog.Debug("Remote already has object",
			"hash", hash)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), constants.DirPerms); err != nil {
		return fmt.Errorf("failed to create remote object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", hash, err)
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr, os.Chmod(tmpName, constants.FilePerms)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to put object %s: %w", hash, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to put object %s: %w", hash, err)
	}
	return nil
}

func (t *FileTransport) ReadRef(name string) (string, error) {
	resolution, err := t.refs.Resolve(name)
	if err != nil {
		return "", err
	}
	return resolution.Hash, nil
}

func (t *FileTransport) UpdateRef(name, hash string) error {
	return t.refs.UpdateRef(name, hash)
}

// TransportReader decodes objects fetched through a transport, so the graph
// walker can run over a remote repository.
type TransportReader struct {
	transport ObjectTransport
}

func NewTransportReader(transport ObjectTransport) *TransportReader {
	return &TransportReader{transport: transport}
}

// Read fetches and verifies hash.
func (r *TransportReader) Read(hash string) (*objects.RawObject, error) {
	data, err := r.transport.Fetch(hash)
	if err != nil {
		return nil, err
	}
	return objects.DecodeCompressed(hash, data)
}
