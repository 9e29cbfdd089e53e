package media

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Category groups stored objects by media type.
type Category string

const (
	CategoryImage Category = "image"
	CategoryVideo Category = "video"
	CategoryOther Category = "other"
)

const (
	sidecarSuffix  = ".meta.json"
	stagingDirName = ".staging"
)

var categoryByExt = map[string]Category{
	"jpg":  CategoryImage,
	"jpeg": CategoryImage,
	"png":  CategoryImage,
	"gif":  CategoryImage,
	"webp": CategoryImage,
	"bmp":  CategoryImage,
	"mp4":  CategoryVideo,
	"mov":  CategoryVideo,
	"avi":  CategoryVideo,
	"mkv":  CategoryVideo,
	"webm": CategoryVideo,
}

// Classify maps an extension (with or without the leading dot) to its category.
func Classify(ext string) Category {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if c, ok := categoryByExt[ext]; ok {
		return c
	}
	return CategoryOther
}

// SubDir is the storage sub-directory used for the category when
// sub-directory mode is on. Other files live directly under the root.
func (c Category) SubDir() string {
	switch c {
	case CategoryImage:
		return "images"
	case CategoryVideo:
		return "videos"
	default:
		return ""
	}
}

// ExtOf returns the lower-cased extension of an uploaded file name without the
// dot. Extensions carrying anything but ASCII letters and digits are dropped so
// they can never shape the on-disk name.
func ExtOf(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	base := path.Base(name)
	ext := path.Ext(base)
	if ext == "" || ext == base {
		return ""
	}
	ext = strings.ToLower(ext[1:])
	for _, r := range ext {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}

// StoredObject describes where a piece of content lives on disk.
type StoredObject struct {
	Hash        string
	Ext         string
	Category    Category
	RelPath     string
	Path        string
	SidecarPath string
}

// Layout resolves content identifiers to paths under a storage root.
type Layout struct {
	Root    string
	SubDirs bool
}

// NewLayout returns a Layout with an absolute, cleaned root.
func NewLayout(root string, subDirs bool) (Layout, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return Layout{}, fmt.Errorf("storage root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, fmt.Errorf("resolve storage root: %w", err)
	}
	return Layout{Root: abs, SubDirs: subDirs}, nil
}

// Resolve computes the physical and sidecar path for hash + ext.
func (l Layout) Resolve(hash, ext string) StoredObject {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	category := Classify(ext)

	name := hash
	if ext != "" {
		name = hash + "." + ext
	}
	rel := name
	if l.SubDirs && category.SubDir() != "" {
		rel = category.SubDir() + "/" + name
	}
	physical := filepath.Join(l.Root, filepath.FromSlash(rel))

	return StoredObject{
		Hash:        hash,
		Ext:         ext,
		Category:    category,
		RelPath:     rel,
		Path:        physical,
		SidecarPath: SidecarPathOf(physical),
	}
}

// SidecarPathOf derives <dir>/<name>.meta.json from <dir>/<name>.<ext>.
func SidecarPathOf(physicalPath string) string {
	dir, base := filepath.Split(physicalPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+sidecarSuffix)
}

func isSidecar(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), sidecarSuffix)
}

// Contain resolves candidate against the layout root. See Contain.
func (l Layout) Contain(candidate string) (string, error) {
	return Contain(l.Root, candidate)
}

// Rel returns the slash-separated path of abs relative to the root.
func (l Layout) Rel(abs string) string {
	rel, err := filepath.Rel(l.Root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

func (l Layout) stagingDir() string {
	return filepath.Join(l.Root, stagingDirName)
}

// Contain decodes candidate once, normalizes it and returns the absolute path
// only when it lies strictly below root. Relative candidates are resolved
// against root; absolute ones are checked as given.
func Contain(root, candidate string) (string, error) {
	decoded, err := url.PathUnescape(candidate)
	if err != nil {
		return "", ErrInvalidPath
	}
	decoded = strings.ReplaceAll(strings.TrimSpace(decoded), `\`, "/")
	if decoded == "" || strings.ContainsRune(decoded, 0) {
		return "", ErrInvalidPath
	}

	native := filepath.FromSlash(decoded)
	var abs string
	if strings.HasPrefix(decoded, "/") || filepath.IsAbs(native) {
		abs = filepath.Clean(native)
	} else {
		abs = filepath.Join(root, native)
	}

	if !within(filepath.Clean(root), abs) {
		return "", ErrInvalidPath
	}
	return abs, nil
}

func within(root, p string) bool {
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(p, prefix) && len(p) > len(prefix)
}
