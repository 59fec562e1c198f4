package objects

import (
	"testing"

	"github.com/KostasZigo/rgit/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"empty":     {},
		"text":      []byte("hello world\n"),
		"with nul":  []byte("a\x00b\x00c"),
		"binary":    {0xff, 0x00, 0x10, 0x80},
		"multiline": []byte("tree x\nauthor y\n\nmsg\n"),
	}

	for name, payload := range payloads {
		for _, objectType := range []utils.ObjectType{utils.BlobObjectType, utils.TreeObjectType, utils.CommitObjectType} {
			t.Run(name+"/"+string(objectType), func(t *testing.T) {
				encoded := Encode(objectType, payload)

				compressed, err := Compress(encoded)
				require.NoError(t, err)
				decompressed, err := Decompress(compressed)
				require.NoError(t, err)
				require.Equal(t, encoded, decompressed)

				decodedType, decodedPayload, err := Decode(decompressed)
				require.NoError(t, err)
				assert.Equal(t, objectType, decodedType)
				assert.Equal(t, payload, decodedPayload)
			})
		}
	}
}

func TestEncode_HeaderFormat(t *testing.T) {
	assert.Equal(t, "blob 2\x00hi", string(Encode(utils.BlobObjectType, []byte("hi"))))
}

func TestComputeHash_KnownValue(t *testing.T) {
	// Same value git produces for `printf 'test file content' | git hash-object --stdin`
	hash, err := utils.ComputeHash([]byte("test file content"), utils.BlobObjectType)
	require.NoError(t, err)
	assert.Equal(t, "2211df3faee131ad21edcb844e098a42c1fbb4e5", hash)
}

func TestDecode_Malformed(t *testing.T) {
	testCases := map[string][]byte{
		"no nul":        []byte("blob 2hi"),
		"no space":      []byte("blob2\x00hi"),
		"unknown type":  []byte("tag 2\x00hi"),
		"bad size":      []byte("blob x\x00hi"),
		"size mismatch": []byte("blob 3\x00hi"),
	}

	for name, data := range testCases {
		t.Run(name, func(t *testing.T) {
			_, _, err := Decode(data)
			assert.ErrorIs(t, err, ErrMalformedObject)
		})
	}
}

func TestDecompress_Garbage(t *testing.T) {
	_, err := Decompress([]byte("definitely not zlib"))
	assert.ErrorIs(t, err, ErrMalformedObject)
}
