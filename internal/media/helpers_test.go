package media

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, subDirs bool) *Service {
	t.Helper()
	return newTestServiceWith(t, Options{SubDirs: subDirs})
}

func newTestServiceWith(t *testing.T, opts Options) *Service {
	t.Helper()
	if opts.Root == "" {
		opts.Root = t.TempDir()
	}
	if opts.PublicDomain == "" {
		opts.PublicDomain = "localhost:3001"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	svc, err := NewService(opts)
	require.NoError(t, err)
	return svc
}

func bytesUpload(name string, data []byte) Upload {
	return Upload{
		OriginalName: name,
		Size:         int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// writeRootFile places a file directly under the service root, bypassing
// ingestion.
func writeRootFile(t *testing.T, svc *Service, rel string, data []byte) string {
	t.Helper()
	abs := filepath.Join(svc.Layout().Root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, data, 0o644))
	return abs
}

func patterned(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i % 251)
	}
	return out
}
