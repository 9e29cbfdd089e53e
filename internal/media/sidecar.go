package media

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteMetadata serializes meta to path, replacing any existing sidecar.
// The payload goes to a temporary sibling first so readers never observe a
// half-written sidecar.
func WriteMetadata(path string, meta ObjectMetadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".meta-*")
	if err != nil {
		return fmt.Errorf("create metadata temp: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close metadata: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("place metadata: %w", err)
	}
	return nil
}

// ReadMetadata returns the sidecar at path. Missing or malformed sidecars
// report ok=false.
func ReadMetadata(path string) (ObjectMetadata, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ObjectMetadata{}, false
	}
	var meta ObjectMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return ObjectMetadata{}, false
	}
	return meta, true
}
