package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHash = "2c26b46b68ffc68ff99b453c1d30413413422d706483bfa0f98a5e886266e7ae"

func TestClassify(t *testing.T) {
	cases := map[string]Category{
		"jpg":   CategoryImage,
		".JPEG": CategoryImage,
		"PnG":   CategoryImage,
		"webp":  CategoryImage,
		"mp4":   CategoryVideo,
		".MKV":  CategoryVideo,
		"txt":   CategoryOther,
		"":      CategoryOther,
		"tar":   CategoryOther,
	}
	for ext, want := range cases {
		assert.Equal(t, want, Classify(ext), "ext %q", ext)
	}
}

func TestExtOf(t *testing.T) {
	cases := map[string]string{
		"photo.JPG":          "jpg",
		"archive.tar.gz":     "gz",
		"noext":              "",
		".bashrc":            "",
		"dir/clip.mov":       "mov",
		`C:\Users\me\a.PNG`:  "png",
		"weird.j%pg":         "",
		"evil.jpg/../x.sh":   "sh",
		"trailing.":          "",
		"spaces in name.txt": "txt",
	}
	for name, want := range cases {
		assert.Equal(t, want, ExtOf(name), "name %q", name)
	}
}

func TestResolveWithSubDirs(t *testing.T) {
	root := t.TempDir()
	layout, err := NewLayout(root, true)
	require.NoError(t, err)

	img := layout.Resolve(testHash, ".JPG")
	assert.Equal(t, CategoryImage, img.Category)
	assert.Equal(t, "images/"+testHash+".jpg", img.RelPath)
	assert.Equal(t, filepath.Join(root, "images", testHash+".jpg"), img.Path)
	assert.Equal(t, filepath.Join(root, "images", testHash+".meta.json"), img.SidecarPath)

	vid := layout.Resolve(testHash, "mp4")
	assert.Equal(t, "videos/"+testHash+".mp4", vid.RelPath)

	other := layout.Resolve(testHash, "txt")
	assert.Equal(t, testHash+".txt", other.RelPath)
	assert.Equal(t, filepath.Join(root, testHash+".meta.json"), other.SidecarPath)

	bare := layout.Resolve(testHash, "")
	assert.Equal(t, testHash, bare.RelPath)
	assert.Equal(t, filepath.Join(root, testHash+".meta.json"), bare.SidecarPath)
}

func TestResolveWithoutSubDirs(t *testing.T) {
	root := t.TempDir()
	layout, err := NewLayout(root, false)
	require.NoError(t, err)

	img := layout.Resolve(testHash, "png")
	assert.Equal(t, testHash+".png", img.RelPath)
	assert.Equal(t, filepath.Join(root, testHash+".png"), img.Path)
}

func TestResolveIsDeterministic(t *testing.T) {
	layout, err := NewLayout(t.TempDir(), true)
	require.NoError(t, err)
	assert.Equal(t, layout.Resolve(testHash, "gif"), layout.Resolve(testHash, "gif"))
}

func TestNewLayoutRequiresRoot(t *testing.T) {
	_, err := NewLayout("   ", true)
	require.Error(t, err)
}

func TestContainAcceptsPathsBelowRoot(t *testing.T) {
	root := t.TempDir()

	cases := map[string]string{
		"images/a.jpg":            filepath.Join(root, "images", "a.jpg"),
		"images/../images/a.jpg":  filepath.Join(root, "images", "a.jpg"),
		"./notes.txt":             filepath.Join(root, "notes.txt"),
		"my%20file.txt":           filepath.Join(root, "my file.txt"),
		`images\b.png`:            filepath.Join(root, "images", "b.png"),
		filepath.Join(root, "x"):  filepath.Join(root, "x"),
		"images//double//sl.jpg":  filepath.Join(root, "images", "double", "sl.jpg"),
		"%252e%252e/literal.txt":  filepath.Join(root, "%2e%2e", "literal.txt"),
	}
	for in, want := range cases {
		got, err := Contain(root, in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}
}

func TestContainRejectsEscapes(t *testing.T) {
	root := filepath.Join(t.TempDir(), "store")
	require.NoError(t, os.MkdirAll(root, 0o755))

	inputs := []string{
		"",
		"   ",
		".",
		"./",
		"..",
		"../secret",
		"../../etc/passwd",
		"images/../../etc/passwd",
		"..%2f..%2fetc%2fpasswd",
		"%2e%2e/%2e%2e/etc/passwd",
		`..\..\windows\win.ini`,
		"/etc/passwd",
		root,
		root + "-sibling/file",
		filepath.Dir(root),
		"a\x00b",
		"a%00b",
		"%zz",
	}
	for _, in := range inputs {
		_, err := Contain(root, in)
		assert.ErrorIs(t, err, ErrInvalidPath, "input %q", in)
		assert.Equal(t, KindInvalid, KindOf(err), "input %q", in)
	}
}

func TestContainResultAlwaysBelowRoot(t *testing.T) {
	root := t.TempDir()
	segments := []string{"..", ".", "a", "%2e%2e", `..\`, "b/..", "", "%2F"}

	// every three-segment combination either fails or stays below root
	for _, a := range segments {
		for _, b := range segments {
			for _, c := range segments {
				in := strings.Join([]string{a, b, c}, "/")
				got, err := Contain(root, in)
				if err != nil {
					continue
				}
				assert.True(t, strings.HasPrefix(got, root+string(filepath.Separator)), "input %q escaped to %q", in, got)
			}
		}
	}
}

func TestSidecarPathOf(t *testing.T) {
	assert.Equal(t, filepath.Join("r", "images", "h.meta.json"), SidecarPathOf(filepath.Join("r", "images", "h.jpg")))
	assert.Equal(t, filepath.Join("r", "h.meta.json"), SidecarPathOf(filepath.Join("r", "h")))
	assert.True(t, isSidecar("h.META.json"))
	assert.False(t, isSidecar("h.json"))
}
