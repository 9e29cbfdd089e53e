package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const (
	// CacheControlImmutable is sent with every served object; content never
	// changes under a given name.
	CacheControlImmutable = "public, max-age=31536000, immutable"

	copyBufferSize = 32 * 1024
)

var rangeRe = regexp.MustCompile(`^bytes=(\d*)-(\d*)$`)

// ByteRange is an inclusive window into a file.
type ByteRange struct {
	Start int64
	End   int64
}

// Length is the number of bytes in the window.
func (r ByteRange) Length() int64 { return r.End - r.Start + 1 }

// ParseRange interprets a single "bytes=" range against a file of the given
// size. Either bound may be omitted; "bytes=-N" selects the last N bytes. The
// end is clamped to the last byte. ok is false when the header is malformed
// or the window cannot be satisfied.
func ParseRange(header string, size int64) (ByteRange, bool) {
	m := rangeRe.FindStringSubmatch(strings.TrimSpace(header))
	if m == nil || (m[1] == "" && m[2] == "") {
		return ByteRange{}, false
	}

	if m[1] == "" {
		n, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil || n == 0 || size == 0 {
			return ByteRange{}, false
		}
		if n > size {
			n = size
		}
		return ByteRange{Start: size - n, End: size - 1}, true
	}

	start, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return ByteRange{}, false
	}
	end := size - 1
	if m[2] != "" {
		end, err = strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return ByteRange{}, false
		}
	}
	if start > end || start >= size {
		return ByteRange{}, false
	}
	if end >= size {
		end = size - 1
	}
	return ByteRange{Start: start, End: end}, true
}

// Stream describes a response for one served object. A 416 stream carries no
// body. Callers must Close it.
type Stream struct {
	Status      int
	ContentType string
	Size        int64
	Range       ByteRange
	Path        string

	file *os.File
}

// Header returns the response headers for the stream.
func (s *Stream) Header() http.Header {
	h := http.Header{}
	h.Set("Cache-Control", CacheControlImmutable)
	h.Set("Accept-Ranges", "bytes")

	switch s.Status {
	case http.StatusRequestedRangeNotSatisfiable:
		h.Set("Content-Range", fmt.Sprintf("bytes */%d", s.Size))
		h.Set("Content-Length", "0")
		return h
	case http.StatusPartialContent:
		h.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", s.Range.Start, s.Range.End, s.Size))
	}
	h.Set("Content-Type", s.ContentType)
	h.Set("Content-Length", strconv.FormatInt(s.Length(), 10))
	return h
}

// Length is the number of body bytes the stream will send.
func (s *Stream) Length() int64 {
	if s.Status == http.StatusRequestedRangeNotSatisfiable {
		return 0
	}
	return s.Range.Length()
}

// WriteTo copies the selected window to w. A client that goes away (ctx done
// or a failed write) ends the copy without an error; read failures are
// returned so the caller can log them. Headers are already committed by then,
// so nothing else should be written.
func (s *Stream) WriteTo(ctx context.Context, w io.Writer) (int64, error) {
	if s.file == nil {
		return 0, nil
	}

	remaining := s.Range.Length()
	section := io.NewSectionReader(s.file, s.Range.Start, remaining)
	buf := make([]byte, copyBufferSize)

	var written int64
	for remaining > 0 {
		if ctx.Err() != nil {
			return written, nil
		}
		nr, rerr := section.Read(buf)
		if nr > 0 {
			nw, werr := w.Write(buf[:nr])
			written += int64(nw)
			remaining -= int64(nw)
			if werr != nil {
				return written, nil
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return written, storageErr("read object", rerr)
		}
	}
	if remaining > 0 {
		return written, storageErr("read object", io.ErrUnexpectedEOF)
	}
	return written, nil
}

// Close releases the underlying file.
func (s *Stream) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// ServeRange resolves relPath under the root and prepares a stream honoring
// rangeHeader. relPath is percent-decoded exactly once.
func (s *Service) ServeRange(ctx context.Context, relPath, rangeHeader string) (*Stream, error) {
	if strings.TrimSpace(relPath) == "" {
		return nil, ErrMissingPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := s.layout.Contain(relPath)
	if err != nil {
		return nil, err
	}
	rel := s.layout.Rel(abs)
	if !isObjectPath(rel) {
		return nil, ErrNotFound
	}

	f, err := os.Open(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, storageErr("open object", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, storageErr("stat object", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, ErrNotFound
	}

	size := info.Size()
	stream := &Stream{
		Status:      http.StatusOK,
		ContentType: contentTypeOf(abs),
		Size:        size,
		Range:       ByteRange{Start: 0, End: size - 1},
		Path:        rel,
	}

	if rangeHeader != "" {
		br, ok := ParseRange(rangeHeader, size)
		if !ok {
			_ = f.Close()
			stream.Status = http.StatusRequestedRangeNotSatisfiable
			stream.Range = ByteRange{}
			return stream, nil
		}
		stream.Status = http.StatusPartialContent
		stream.Range = br
	}

	stream.file = f
	return stream, nil
}

func contentTypeOf(p string) string {
	if ct := mime.TypeByExtension(filepath.Ext(p)); ct != "" {
		return ct
	}
	return defaultMimeType
}
