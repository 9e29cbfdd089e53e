package normalize

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noisyJPEG encodes random pixels at full quality so it compresses badly.
func noisyJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}))
	return buf.Bytes()
}

func readAll(t *testing.T, r io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return b
}

func TestNormalizePassesThroughNonJPEG(t *testing.T) {
	s := JPEGShrinker{MaxBytes: 4, MaxPasses: 3}
	r := strings.NewReader("hello world")

	out, err := s.Normalize(context.Background(), "txt", r)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(readAll(t, out)))
}

func TestNormalizeDisabled(t *testing.T) {
	data := noisyJPEG(t, 32, 32)
	s := JPEGShrinker{MaxBytes: 0, MaxPasses: 3}

	out, err := s.Normalize(context.Background(), "jpg", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, data, readAll(t, out))
}

func TestNormalizeKeepsSmallJPEG(t *testing.T) {
	data := noisyJPEG(t, 16, 16)
	s := JPEGShrinker{MaxBytes: int64(len(data)), MaxPasses: 3}

	out, err := s.Normalize(context.Background(), "jpeg", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, data, readAll(t, out))
}

func TestNormalizeShrinksLargeJPEG(t *testing.T) {
	data := noisyJPEG(t, 128, 128)
	limit := int64(len(data)) / 2
	s := JPEGShrinker{MaxBytes: limit, MaxPasses: 5}

	out, err := s.Normalize(context.Background(), "jpg", bytes.NewReader(data))
	require.NoError(t, err)

	shrunk := readAll(t, out)
	assert.Less(t, len(shrunk), len(data))
	_, err = jpeg.Decode(bytes.NewReader(shrunk))
	require.NoError(t, err)
}

func TestNormalizeIsDeterministic(t *testing.T) {
	data := noisyJPEG(t, 64, 64)
	s := JPEGShrinker{MaxBytes: int64(len(data)) / 3, MaxPasses: 2}

	first, err := s.Normalize(context.Background(), "jpg", bytes.NewReader(data))
	require.NoError(t, err)
	second, err := s.Normalize(context.Background(), "jpg", bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, readAll(t, first), readAll(t, second))
}

func TestNormalizeUndecodableJPEGPassesThrough(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 100)
	s := JPEGShrinker{MaxBytes: 10, MaxPasses: 3}

	out, err := s.Normalize(context.Background(), "jpg", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, data, readAll(t, out))
}

func TestNormalizeHugeLimitDoesNotPreallocate(t *testing.T) {
	data := noisyJPEG(t, 16, 16)
	s := JPEGShrinker{MaxBytes: 1 << 40, MaxPasses: 3}

	out, err := s.Normalize(context.Background(), "jpg", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, data, readAll(t, out))
}
