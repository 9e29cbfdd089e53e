package media

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTextFiles(t *testing.T, svc *Service, n int) []string {
	t.Helper()
	uploads := make([]Upload, 0, n)
	for i := 0; i < n; i++ {
		uploads = append(uploads, bytesUpload(fmt.Sprintf("doc-%02d.txt", i), []byte(fmt.Sprintf("content %d", i))))
	}
	results, err := svc.Ingest(context.Background(), uploads)
	require.NoError(t, err)

	paths := make([]string, 0, n)
	for _, r := range results {
		require.NoError(t, r.Err())
		paths = append(paths, r.Path)
	}
	sort.Strings(paths)
	return paths
}

func TestListEmptyRoot(t *testing.T) {
	svc := newTestService(t, true)

	page, err := svc.List(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Zero(t, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)
}

func TestListPaginationIsStableAndComplete(t *testing.T) {
	svc := newTestService(t, true)
	want := seedTextFiles(t, svc, 25)

	var got []string
	for pageNo := 1; pageNo <= 3; pageNo++ {
		page, err := svc.List(context.Background(), ListParams{Page: pageNo, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 25, page.Total)
		for _, e := range page.Data {
			got = append(got, e.Path)
		}
	}
	assert.Equal(t, want, got)

	again, err := svc.List(context.Background(), ListParams{Page: 2, Limit: 10})
	require.NoError(t, err)
	for i, e := range again.Data {
		assert.Equal(t, want[10+i], e.Path)
	}

	past, err := svc.List(context.Background(), ListParams{Page: 4, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, past.Data)
	assert.Equal(t, 25, past.Total)
}

func TestListJoinsSidecars(t *testing.T) {
	svc := newTestService(t, true)
	data := []byte("joined")
	_, err := svc.Ingest(context.Background(), []Upload{bytesUpload("Report.txt", data)})
	require.NoError(t, err)
	writeRootFile(t, svc, "images/manual.png", []byte("no sidecar"))

	page, err := svc.List(context.Background(), ListParams{})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)

	byPath := map[string]CatalogEntry{}
	for _, e := range page.Data {
		byPath[e.Path] = e
	}

	joined := byPath[sha256Hex(data)+".txt"]
	assert.Equal(t, "Report.txt", joined.OriginalName)
	require.NotNil(t, joined.Size)
	assert.Equal(t, int64(len(data)), *joined.Size)
	require.NotNil(t, joined.UploadedAt)
	assert.Equal(t, sha256Hex(data), joined.Hash)
	assert.Equal(t, "http://localhost:3001/files/"+sha256Hex(data)+".txt", joined.URL)

	bare := byPath["images/manual.png"]
	assert.Empty(t, bare.OriginalName)
	assert.Nil(t, bare.Size)
	assert.Nil(t, bare.UploadedAt)
	assert.Equal(t, "http://localhost:3001/files/images/manual.png", bare.URL)
}

func TestListSkipsSidecarsAndHiddenEntries(t *testing.T) {
	svc := newTestService(t, true)
	writeRootFile(t, svc, "visible.txt", []byte("v"))
	writeRootFile(t, svc, ".staging/upload-123", []byte("staged"))
	writeRootFile(t, svc, ".hidden", []byte("h"))
	writeRootFile(t, svc, "orphan.meta.json", []byte("{}"))

	page, err := svc.List(context.Background(), ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "visible.txt", page.Data[0].Path)
}

func TestListFilter(t *testing.T) {
	svc := newTestService(t, true)
	_, err := svc.Ingest(context.Background(), []Upload{
		bytesUpload("Beach-Sunset.jpg", []byte("beach")),
		bytesUpload("mountain.jpg", []byte("mountain")),
		bytesUpload("Sunset-notes.txt", []byte("notes")),
	})
	require.NoError(t, err)

	page, err := svc.List(context.Background(), ListParams{Query: "SUNSET"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, "SUNSET", page.Query)

	page, err = svc.List(context.Background(), ListParams{Query: "images/"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	hashPrefix := sha256Hex([]byte("notes"))[:12]
	page, err = svc.List(context.Background(), ListParams{Query: hashPrefix})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Sunset-notes.txt", page.Data[0].OriginalName)

	page, err = svc.List(context.Background(), ListParams{Query: "nothing-matches"})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.NotNil(t, page.Data)
}

func TestListOrderIsByteOrder(t *testing.T) {
	svc := newTestService(t, false)
	for _, name := range []string{"b.txt", "B.txt", "a.txt", "_x.txt"} {
		writeRootFile(t, svc, name, []byte(name))
	}

	page, err := svc.List(context.Background(), ListParams{})
	require.NoError(t, err)

	var got []string
	for _, e := range page.Data {
		got = append(got, e.Path)
	}
	assert.Equal(t, []string{"B.txt", "_x.txt", "a.txt", "b.txt"}, got)
}

func TestListCancelled(t *testing.T) {
	svc := newTestService(t, true)
	seedTextFiles(t, svc, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.List(ctx, ListParams{})
	require.ErrorIs(t, err, context.Canceled)
}
