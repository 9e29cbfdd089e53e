package media

import (
	"context"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Delete removes each referenced object together with its sidecar. References
// may be public URLs, /files/... paths or paths relative to the root. Every
// reference is handled on its own; one bad input never aborts the batch.
func (s *Service) Delete(ctx context.Context, refs []string) ([]DeleteResult, error) {
	if len(refs) == 0 {
		return nil, ErrNoFilesProvided
	}

	results := make([]DeleteResult, 0, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, s.deleteOne(ref))
	}
	return results, nil
}

func (s *Service) deleteOne(ref string) DeleteResult {
	res := DeleteResult{Input: ref}

	abs, err := s.resolveReference(ref)
	if err != nil {
		s.log.Warn("delete rejected", zap.String("input", ref), zap.Error(err))
		res.Status = StatusError
		res.Message = err.Error()
		return res
	}
	res.Path = s.layout.Rel(abs)

	if !isObjectPath(res.Path) {
		res.Status = StatusNotFound
		return res
	}

	info, err := os.Lstat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		res.Status = StatusNotFound
		return res
	case err != nil:
		res.Status = StatusError
		res.Message = err.Error()
		return res
	case info.IsDir():
		res.Status = StatusError
		res.Message = "not a file"
		return res
	}

	if err := os.Remove(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Status = StatusNotFound
			return res
		}
		s.log.Error("delete failed", zap.String("path", abs), zap.Error(err))
		res.Status = StatusError
		res.Message = err.Error()
		return res
	}

	if err := os.Remove(SidecarPathOf(abs)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("cannot remove metadata", zap.String("path", abs), zap.Error(err))
	}

	res.Status = StatusDeleted
	return res
}

// resolveReference extracts the storage-relative part of ref and runs it
// through the containment check.
func (s *Service) resolveReference(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrInvalidPath
	}

	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		u, err := url.Parse(ref)
		if err != nil {
			return "", ErrInvalidPath
		}
		p := u.EscapedPath()
		if strings.HasPrefix(p, FilesPrefix) {
			p = strings.TrimPrefix(p, FilesPrefix)
		} else {
			p = strings.TrimPrefix(p, "/")
		}
		ref = p
	case strings.HasPrefix(ref, FilesPrefix):
		ref = strings.TrimPrefix(ref, FilesPrefix)
	}

	return s.layout.Contain(ref)
}

// isObjectPath reports whether rel can name a stored object: no hidden
// segment (staging area, temp files) and not a sidecar.
func isObjectPath(rel string) bool {
	segments := strings.Split(rel, "/")
	for _, seg := range segments {
		if seg == "" || strings.HasPrefix(seg, ".") {
			return false
		}
	}
	return !isSidecar(segments[len(segments)-1])
}
