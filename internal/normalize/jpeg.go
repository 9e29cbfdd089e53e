// Package normalize rewrites uploads before they are hashed.
package normalize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
)

const (
	startQuality = 95
	qualityStep  = 10
	minQuality   = 30
)

// JPEGShrinker re-encodes JPEG uploads larger than MaxBytes at decreasing
// quality until they fit or MaxPasses encodes have run. Other uploads pass
// through untouched, as do JPEGs that cannot be decoded.
type JPEGShrinker struct {
	MaxBytes  int64
	MaxPasses int
}

// Normalize implements media.Normalizer.
func (s JPEGShrinker) Normalize(ctx context.Context, ext string, r io.Reader) (io.Reader, error) {
	if s.MaxBytes <= 0 || (ext != "jpg" && ext != "jpeg") {
		return r, nil
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(io.LimitReader(r, s.MaxBytes+1)); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(buf.Len()) <= s.MaxBytes {
		return bytes.NewReader(buf.Bytes()), nil
	}
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	original := buf.Bytes()

	img, err := jpeg.Decode(bytes.NewReader(original))
	if err != nil {
		return bytes.NewReader(original), nil
	}

	return bytes.NewReader(s.shrink(ctx, img, original)), nil
}

// shrink returns the smallest encoding found, never anything larger than
// original.
func (s JPEGShrinker) shrink(ctx context.Context, img image.Image, original []byte) []byte {
	passes := s.MaxPasses
	if passes < 1 {
		passes = 1
	}

	best := original
	quality := startQuality
	for pass := 0; pass < passes; pass++ {
		if ctx.Err() != nil {
			break
		}
		var out bytes.Buffer
		if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
			break
		}
		if out.Len() < len(best) {
			best = out.Bytes()
		}
		if int64(len(best)) <= s.MaxBytes {
			break
		}
		quality -= qualityStep
		if quality < minQuality {
			quality = minQuality
		}
	}
	return best
}
