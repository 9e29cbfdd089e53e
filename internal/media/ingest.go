package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const defaultMimeType = "application/octet-stream"

// Ingest stores each upload under its content hash, in submission order.
// An empty batch fails before touching the disk; every other failure is
// recorded on the item's result and the batch carries on.
func (s *Service) Ingest(ctx context.Context, uploads []Upload) ([]IngestResult, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFilesProvided
	}
	if err := os.MkdirAll(s.layout.stagingDir(), dirMode); err != nil {
		return nil, storageErr("prepare staging", err)
	}

	results := make([]IngestResult, 0, len(uploads))
	for _, up := range uploads {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := s.ingestOne(ctx, up)
		if err != nil {
			s.log.Warn("ingest failed",
				zap.String("original_name", up.OriginalName),
				zap.String("kind", KindOf(err).String()),
				zap.Error(err),
			)
			res = IngestResult{OriginalName: up.OriginalName, Error: err.Error(), err: err}
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Service) ingestOne(ctx context.Context, up Upload) (IngestResult, error) {
	if up.Open == nil {
		return IngestResult{}, ErrMissingStagedFile
	}
	src, err := up.Open()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return IngestResult{}, fmt.Errorf("%w: %v", ErrMissingStagedFile, err)
		}
		return IngestResult{}, storageErr("open upload", err)
	}
	defer src.Close()

	ext := ExtOf(up.OriginalName)

	var body io.Reader = src
	if s.normalizer != nil {
		body, err = s.normalizer.Normalize(ctx, ext, src)
		if err != nil {
			return IngestResult{}, storageErr("normalize upload", err)
		}
	}

	stagedPath, digest, err := s.stage(ctx, body)
	if stagedPath != "" {
		defer os.Remove(stagedPath)
	}
	if err != nil {
		return IngestResult{}, err
	}

	obj := s.layout.Resolve(digest, ext)
	if err := os.MkdirAll(filepath.Dir(obj.Path), dirMode); err != nil {
		return IngestResult{}, storageErr("create directory", err)
	}

	dedup := false
	if _, err := os.Stat(obj.Path); err == nil {
		dedup = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return IngestResult{}, storageErr("stat object", err)
	} else if err := place(stagedPath, obj.Path); err != nil {
		return IngestResult{}, storageErr("place object", err)
	}

	info, err := os.Stat(obj.Path)
	if err != nil {
		return IngestResult{}, storageErr("stat object", err)
	}

	meta := ObjectMetadata{
		OriginalName: up.OriginalName,
		Size:         info.Size(),
		MimeType:     mimeTypeFor(up.MimeType, ext),
		UploadedAt:   s.now().UTC(),
		Hash:         digest,
	}
	if err := WriteMetadata(obj.SidecarPath, meta); err != nil {
		s.log.Warn("cannot write metadata", zap.String("path", obj.SidecarPath), zap.Error(err))
	}

	return IngestResult{
		URL:          s.urls.For(obj.RelPath),
		Dedup:        dedup,
		OriginalName: up.OriginalName,
		Path:         obj.RelPath,
		Hash:         digest,
		Size:         info.Size(),
	}, nil
}

// stage copies body into the staging area while hashing it. The returned
// path, when non-empty, must be removed by the caller.
func (s *Service) stage(ctx context.Context, body io.Reader) (string, string, error) {
	tmp, err := os.CreateTemp(s.layout.stagingDir(), "upload-*")
	if err != nil {
		return "", "", storageErr("create staging file", err)
	}
	path := tmp.Name()

	hasher := NewHasher()
	if _, err := io.Copy(io.MultiWriter(tmp, hasher), &ctxReader{ctx: ctx, r: body}); err != nil {
		_ = tmp.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return path, "", ctxErr
		}
		return path, "", storageErr("stage upload", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return path, "", storageErr("stage upload", err)
	}
	if err := tmp.Close(); err != nil {
		return path, "", storageErr("stage upload", err)
	}
	return path, hasher.Sum(), nil
}

// place moves the staged file to dst. A concurrent identical upload may win
// the race; rename simply replaces its bytes with the same content.
func place(staged, dst string) error {
	if err := os.Rename(staged, dst); err == nil {
		return nil
	}
	return copyFile(staged, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".place-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func mimeTypeFor(declared, ext string) string {
	if declared != "" {
		return declared
	}
	if ext != "" {
		if byExt := mime.TypeByExtension("." + ext); byExt != "" {
			return byExt
		}
	}
	return defaultMimeType
}
