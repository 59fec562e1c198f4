package utils

import (
	"crypto/sha1"
	"fmt"
	"path/filepath"
	"strings"
)

type ObjectType string

const (
	BlobObjectType   ObjectType = "blob"
	TreeObjectType   ObjectType = "tree"
	CommitObjectType ObjectType = "commit"
)

func (ot ObjectType) IsValid() bool {
	switch ot {
	case BlobObjectType, TreeObjectType, CommitObjectType:
		return true
	default:
		return false
	}
}

// ObjectHeader returns the "<type> <size>\0" prefix hashed and stored ahead of every payload.
func ObjectHeader(objectType ObjectType, size int) string {
	return fmt.Sprintf("%v %d\x00", objectType, size)
}

// ComputeHash calculates SHA-1 hash for Object content
func ComputeHash(content []byte, objectType ObjectType) (string, error) {
	if !objectType.IsValid() {
		return "", fmt.Errorf("invalid object type: %s - hash not computed", objectType)
	}

	header := ObjectHeader(objectType, len(content))
	data := make([]byte, 0, len(header)+len(content))
	data = append(data, header...)
	data = append(data, content...)
	hash := sha1.Sum(data)
	return fmt.Sprintf("%x", hash), nil
}

// IsValidHash reports whether s is a 40-character lowercase hex SHA-1.
func IsValidHash(s string) bool {
	if len(s) != 40 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// ShortHash returns the 7-character abbreviation used in human-readable output.
func ShortHash(hash string) string {
	if len(hash) <= 7 {
		return hash
	}
	return hash[:7]
}

// BuildDirPath constructs os-agnostic display direcotry path with trailing separator preserving all components.
// Unlike filepath.Join, does not normalize "." or remove redundant separators.
func BuildDirPath(dirs ...string) string {
	return strings.Join(dirs, string(filepath.Separator)) + string(filepath.Separator)
}
