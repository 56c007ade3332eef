package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestImageStore_SavePNG(t *testing.T) {
	dataDir := t.TempDir()
	store, err := NewImageStore(dataDir)
	if err != nil {
		t.Fatalf("NewImageStore: %v", err)
	}

	payload := []byte("png payload")
	path, err := store.SavePNG(payload)
	if err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(dataDir, "images") {
		t.Errorf("path = %q, want it under the images directory", path)
	}
	if !strings.HasSuffix(path, ".png") {
		t.Errorf("path = %q, want .png suffix", path)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("content = %q, want %q", got, payload)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 0600", perm)
	}
}

func TestImageStore_SameSecondDoesNotOverwrite(t *testing.T) {
	store, err := NewImageStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewImageStore: %v", err)
	}

	first, err := store.SavePNG([]byte("one"))
	if err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	second, err := store.SavePNG([]byte("two"))
	if err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	if first == second {
		t.Fatalf("both saves returned %q", first)
	}
	got, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "one" {
		t.Errorf("first image content = %q, clobbered by second save", got)
	}
}

func TestImageStore_NoTempFilesLeftBehind(t *testing.T) {
	dataDir := t.TempDir()
	store, err := NewImageStore(dataDir)
	if err != nil {
		t.Fatalf("NewImageStore: %v", err)
	}
	if _, err := store.SavePNG([]byte("x")); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dataDir, "images"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("stray temp file %q", e.Name())
		}
	}
}
