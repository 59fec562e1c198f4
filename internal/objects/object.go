package objects

import (
	"errors"
	"fmt"

	"github.com/KostasZigo/rgit/utils"
)

var (
	// ErrObjectNotFound is matched by every error returned for a hash with no backing file.
	ErrObjectNotFound = errors.New("object not found")

	// ErrMalformedObject reports decoded bytes that lack the expected header, NUL boundary or lines.
	ErrMalformedObject = errors.New("malformed object")

	// ErrInvalidHash reports a string that is not a 40-character lowercase hex SHA-1.
	ErrInvalidHash = errors.New("invalid object hash")
)

// NotFoundError names the missing hash. errors.Is(err, ErrObjectNotFound) holds for it.
type NotFoundError struct {
	Hash string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("object %s not found", e.Hash)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrObjectNotFound
}

// Object represents any rgit object that can be stored
// All rgit objects (blobs, trees, commits) must implement this interface
type Object interface {
	// Hash returns the SHA-1 hash of the object
	Hash() string

	// Type returns the object kind written into the header
	Type() utils.ObjectType

	// Content returns the payload without header
	Content() []byte

	// Data returns the complete object data including header
	// Format: "<type> <size>\0<content>"
	Data() []byte
}

// RawObject is a decoded object as read back from storage.
// Content may be shared with the store's cache and must not be modified.
type RawObject struct {
	Hash    string
	Type    utils.ObjectType
	Content []byte
}

func (o *RawObject) String() string {
	return fmt.Sprintf("RawObject{hash: %s, type: %s, size: %d bytes}", o.Hash, o.Type, len(o.Content))
}

func validateHash(hash string) error {
	if !utils.IsValidHash(hash) {
		return fmt.Errorf("%w: %q", ErrInvalidHash, hash)
	}
	return nil
}
