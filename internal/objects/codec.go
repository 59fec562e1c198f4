package objects

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KostasZigo/rgit/internal/constants"
	"github.com/KostasZigo/rgit/utils"
	"github.com/klauspost/compress/zlib"
)

// Encode prepends the "<type> <size>\0" header to content.
// The result is both the hash input and the bytes that get compressed on disk.
func Encode(objectType utils.ObjectType, content []byte) []byte {
	header := utils.ObjectHeader(objectType, len(content))
	data := make([]byte, 0, len(header)+len(content))
	data = append(data, header...)
	return append(data, content...)
}

// Decode splits encoded object data into its type and payload.
// The size declared in the header must match the payload length exactly.
func Decode(data []byte) (utils.ObjectType, []byte, error) {
	nullByteIndex := bytes.IndexByte(data, constants.NullByte)
	if nullByteIndex == -1 {
		return "", nil, fmt.Errorf("%w: no null byte found", ErrMalformedObject)
	}

	header := string(data[:nullByteIndex])
	content := data[nullByteIndex+1:]

	kind, sizeField, ok := strings.Cut(header, " ")
	if !ok {
		return "", nil, fmt.Errorf("%w: invalid header %q", ErrMalformedObject, header)
	}

	objectType := utils.ObjectType(kind)
	if !objectType.IsValid() {
		return "", nil, fmt.Errorf("%w: unknown object type %q", ErrMalformedObject, kind)
	}

	size, err := strconv.Atoi(sizeField)
	if err != nil || size < 0 {
		return "", nil, fmt.Errorf("%w: invalid size %q", ErrMalformedObject, sizeField)
	}
	if size != len(content) {
		return "", nil, fmt.Errorf("%w: size mismatch (header=%d, actual=%d)", ErrMalformedObject, size, len(content))
	}

	return objectType, content, nil
}

// Compress deflates data into a zlib stream.
func Compress(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := zlib.NewWriter(&buffer)

	if _, err := writer.Write(data); err != nil {
		return nil, err
	}

	// Close flushes any buffered data
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// Decompress inflates a zlib stream produced by Compress.
func Decompress(compressed []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create zlib reader: %v", ErrMalformedObject, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read decompressed data: %v", ErrMalformedObject, err)
	}

	return data, nil
}

// DecodeCompressed inflates stored bytes, decodes them, and verifies they hash to expectedHash.
func DecodeCompressed(expectedHash string, compressed []byte) (*RawObject, error) {
	data, err := Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", expectedHash, err)
	}

	objectType, content, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", expectedHash, err)
	}

	hash, err := utils.ComputeHash(content, objectType)
	if err != nil {
		return nil, err
	}
	if hash != expectedHash {
		return nil, fmt.Errorf("%w: hash mismatch: expected %s, got %s", ErrMalformedObject, expectedHash, hash)
	}

	return &RawObject{Hash: hash, Type: objectType, Content: content}, nil
}
