package media

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

const (
	defaultPage  = 1
	defaultLimit = 20
)

// List walks the storage root and returns one page of catalog entries sorted
// by relative path. The filter is a case-insensitive substring match over the
// relative path and the original name. Pages past the end are empty.
func (s *Service) List(ctx context.Context, p ListParams) (ListPage, error) {
	if p.Page < 1 {
		p.Page = defaultPage
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}

	entries, err := s.scan(ctx)
	if err != nil {
		return ListPage{}, err
	}

	filtered := filterEntries(entries, p.Query)
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Path < filtered[j].Path
	})

	total := len(filtered)
	data := []CatalogEntry{}
	if skip := p.Page - 1; skip <= (total-1)/p.Limit && total > 0 {
		start := skip * p.Limit
		end := start + p.Limit
		if end > total {
			end = total
		}
		data = filtered[start:end]
	}

	return ListPage{
		Data:  data,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
		Query: p.Query,
	}, nil
}

func (s *Service) scan(ctx context.Context) ([]CatalogEntry, error) {
	var entries []CatalogEntry
	err := s.walk(ctx, func(abs string, d fs.DirEntry) error {
		if isSidecar(d.Name()) {
			return nil
		}
		entries = append(entries, s.entryFor(abs))
		return nil
	})
	return entries, err
}

func (s *Service) entryFor(abs string) CatalogEntry {
	rel := s.layout.Rel(abs)
	entry := CatalogEntry{URL: s.urls.For(rel), Path: rel}

	meta, ok := ReadMetadata(SidecarPathOf(abs))
	if !ok {
		return entry
	}
	size := meta.Size
	uploadedAt := meta.UploadedAt
	entry.OriginalName = meta.OriginalName
	entry.Size = &size
	entry.MimeType = meta.MimeType
	entry.Hash = meta.Hash
	if !uploadedAt.IsZero() {
		entry.UploadedAt = &uploadedAt
	}
	return entry
}

// walk visits every regular, non-hidden file below the root, sidecars
// included. Hidden directories (the staging area) are skipped and entries
// that vanish mid-walk are ignored.
func (s *Service) walk(ctx context.Context, visit func(abs string, d fs.DirEntry) error) error {
	root := s.layout.Root
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if p != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !d.Type().IsRegular() {
			return nil
		}
		return visit(p, d)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return storageErr("scan storage", err)
	}
	return nil
}

func filterEntries(entries []CatalogEntry, query string) []CatalogEntry {
	keyword := strings.ToLower(strings.TrimSpace(query))
	if keyword == "" {
		return entries
	}
	filtered := make([]CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Path), keyword) ||
			strings.Contains(strings.ToLower(e.OriginalName), keyword) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
