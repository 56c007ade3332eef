package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ImageStore writes decoded screenshots under <dataDir>/images. Files
// are named by the decode timestamp to second granularity; when a
// second image lands within the same second a short random suffix is
// appended instead of overwriting the first.
type ImageStore struct {
	dir string
}

// NewImageStore creates the images directory and returns the store.
func NewImageStore(dataDir string) (*ImageStore, error) {
	dir := filepath.Join(dataDir, "images")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}
	return &ImageStore{dir: dir}, nil
}

// SavePNG persists PNG data and returns the written path. The bytes go
// to a temp file first and are renamed into place, so a failed write
// never leaves a partial image visible to a later render.
func (s *ImageStore) SavePNG(data []byte) (string, error) {
	name := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.dir, name+".png")
	if _, err := os.Stat(path); err == nil {
		path = filepath.Join(s.dir, fmt.Sprintf("%s_%s.png", name, uuid.NewString()[:8]))
	}

	tmp, err := os.CreateTemp(s.dir, ".img-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp image: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close image: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to finalize image: %w", err)
	}
	return path, nil
}
