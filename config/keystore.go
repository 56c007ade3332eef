package config

import (
	"os"
	"path/filepath"
	"strings"
)

// KeyStore is a key -> string file store: one file per key under a
// user-only directory. It backs the persisted API key and custom
// system prompt. Reads treat every failure as "value absent"; callers
// never see a read error.
type KeyStore struct {
	Dir string
}

// NewKeyStore returns a store rooted at dir, defaulting to
// ~/.anthropic when dir is empty.
func NewKeyStore(dir string) *KeyStore {
	if dir == "" {
		dir = GetDefaultKeyStoreDir()
	}
	return &KeyStore{Dir: dir}
}

// Load returns the trimmed value for key, or ok=false when the key is
// missing, unreadable, or empty.
func (s *KeyStore) Load(key string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(s.Dir, key))
	if err != nil {
		if !os.IsNotExist(err) {
			Log.WithField("component", "keystore").
				WithError(err).Debugf("could not read %s", key)
		}
		return "", false
	}
	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", false
	}
	return value, true
}

// Save writes value for key. The directory is created 0700 and the
// file 0600 so only the owner can read the stored credential.
func (s *KeyStore) Save(key, value string) error {
	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return err
	}
	path := filepath.Join(s.Dir, key)
	if err := os.WriteFile(path, []byte(value), 0600); err != nil {
		return err
	}
	// WriteFile only applies the mode on create; tighten pre-existing files.
	return os.Chmod(path, 0600)
}
