package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const rootMode = 0o755

// EnsureRoot creates the storage root when missing and returns its absolute
// path.
func EnsureRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, rootMode); err != nil {
		return "", fmt.Errorf("create storage root: %w", err)
	}
	if err := CheckWritable(abs); err != nil {
		return "", err
	}
	return abs, nil
}

// CheckWritable probes dir by creating and removing a temp file.
func CheckWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("storage root not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("remove probe file: %w", err)
	}
	return nil
}

// LinkServingDir points link at root with a symlink so a static front end
// can reach the stored files. An existing symlink is replaced; any other
// existing entry is left alone. Failures are logged and otherwise ignored.
func LinkServingDir(log *zap.Logger, root, link string) {
	absLink, err := filepath.Abs(link)
	if err != nil {
		log.Warn("resolve symlink path", zap.String("link", link), zap.Error(err))
		return
	}

	if info, err := os.Lstat(absLink); err == nil {
		if info.Mode()&os.ModeSymlink == 0 {
			log.Warn("symlink path exists and is not a link", zap.String("link", absLink))
			return
		}
		if target, err := os.Readlink(absLink); err == nil && target == root {
			return
		}
		if err := os.Remove(absLink); err != nil {
			log.Warn("remove stale symlink", zap.String("link", absLink), zap.Error(err))
			return
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Warn("stat symlink path", zap.String("link", absLink), zap.Error(err))
		return
	}

	if err := os.MkdirAll(filepath.Dir(absLink), rootMode); err != nil {
		log.Warn("create symlink parent", zap.String("link", absLink), zap.Error(err))
		return
	}
	if err := os.Symlink(root, absLink); err != nil {
		log.Warn("create symlink", zap.String("link", absLink), zap.Error(err))
		return
	}
	log.Info("linked serving directory", zap.String("link", absLink), zap.String("root", root))
}
