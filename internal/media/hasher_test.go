package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashReaderKnownDigests(t *testing.T) {
	digest, n, err := HashReader(strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", digest)

	digest, n, err = HashReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", digest)
}

func TestHasherStreamsInChunks(t *testing.T) {
	data := patterned(100_000)

	h := NewHasher()
	for i := 0; i < len(data); i += 4096 {
		end := i + 4096
		if end > len(data) {
			end = len(data)
		}
		_, err := h.Write(data[i:end])
		require.NoError(t, err)
	}

	assert.Equal(t, sha256Hex(data), h.Sum())
	assert.Len(t, h.Sum(), 64)
}

func TestHashFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "blob")
	require.NoError(t, os.WriteFile(p, []byte("hello"), 0o644))

	digest, err := HashFile(p)
	require.NoError(t, err)
	assert.Equal(t, sha256Hex([]byte("hello")), digest)

	_, err = HashFile(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
