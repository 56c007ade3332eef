package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestKeyStore_SaveLoad(t *testing.T) {
	store := NewKeyStore(t.TempDir())

	if err := store.Save("api_key", "sk-test-123"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok := store.Load("api_key")
	if !ok || got != "sk-test-123" {
		t.Errorf("Load = %q, %v; want sk-test-123, true", got, ok)
	}

	info, err := os.Stat(filepath.Join(store.Dir, "api_key"))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 0600", perm)
	}
}

func TestKeyStore_LoadTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "api_key"), []byte("  sk-padded\n"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, ok := NewKeyStore(dir).Load("api_key")
	if !ok || got != "sk-padded" {
		t.Errorf("Load = %q, %v; want sk-padded, true", got, ok)
	}
}

func TestKeyStore_Absent(t *testing.T) {
	dir := t.TempDir()
	store := NewKeyStore(dir)

	if _, ok := store.Load("api_key"); ok {
		t.Error("Load of missing key reported ok")
	}

	// An empty file counts as absent too.
	if err := os.WriteFile(filepath.Join(dir, "system_prompt"), []byte("  \n"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, ok := store.Load("system_prompt"); ok {
		t.Error("Load of empty file reported ok")
	}
}

func TestKeyStore_SaveCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "keys")
	store := NewKeyStore(dir)

	if err := store.Save("api_key", "sk-x"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0700 {
		t.Errorf("dir mode = %o, want 0700", perm)
	}
}
