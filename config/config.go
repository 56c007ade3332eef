package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig is the settings.toml schema. It carries the durable
// defaults a session starts from; per-session state (API key, system
// prompt suffix) lives in the key-file store instead.
type FileConfig struct {
	DataDirectory         string `toml:"data_directory"`
	Provider              string `toml:"provider,omitempty"`
	Model                 string `toml:"model,omitempty"`
	OnlyNMostRecentImages int    `toml:"only_n_most_recent_images,omitempty"`
	HideImages            bool   `toml:"hide_images,omitempty"`
}

// Config is the resolved runtime configuration.
type Config struct {
	DataDirectory         string
	Provider              string
	Model                 string
	OnlyNMostRecentImages int
	HideImages            bool
}

// DataDir returns the data directory with ~ and env vars expanded.
func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func defaultFileConfig() *FileConfig {
	return &FileConfig{
		DataDirectory: GetDefaultDataDir(),
	}
}

// Load reads settings.toml (creating a template on first run) and
// applies environment overrides. A missing file is not an error; a
// malformed one is.
func Load() (*Config, error) {
	fc := defaultFileConfig()
	settingsPath := GetSettingsFilePath()

	if FileExists(settingsPath) {
		if _, err := toml.DecodeFile(settingsPath, fc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", settingsPath, err)
		}
	} else if err := writeDefaultSettings(settingsPath); err != nil {
		// First-run template creation is best effort.
		Log.WithField("component", "config").
			WithError(err).Warn("could not write default settings file")
	}

	cfg := &Config{
		DataDirectory:         fc.DataDirectory,
		Provider:              fc.Provider,
		Model:                 fc.Model,
		OnlyNMostRecentImages: fc.OnlyNMostRecentImages,
		HideImages:            fc.HideImages,
	}
	cfg.applyEnvOverrides()

	if cfg.DataDirectory == "" {
		cfg.DataDirectory = GetDefaultDataDir()
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if dataDir := os.Getenv("CUTUI_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if provider := os.Getenv("API_PROVIDER"); provider != "" {
		c.Provider = provider
	}
	if model := os.Getenv("CUTUI_MODEL"); model != "" {
		c.Model = model
	}
}

// Save persists the current settings back to settings.toml with
// user-only permissions.
func Save(cfg *Config) error {
	if err := EnsureDir(GetConfigDir()); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	fc := &FileConfig{
		DataDirectory:         cfg.DataDirectory,
		Provider:              cfg.Provider,
		Model:                 cfg.Model,
		OnlyNMostRecentImages: cfg.OnlyNMostRecentImages,
		HideImages:            cfg.HideImages,
	}

	f, err := os.OpenFile(GetSettingsFilePath(), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(fc); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return nil
}

func writeDefaultSettings(path string) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	template := fmt.Sprintf(`# cutui configuration
# This file uses TOML format: https://toml.io

# Directory where sessions, logs, screenshots and the audit database live
data_directory = %q

# API provider: anthropic, bedrock or vertex
#provider = "anthropic"

# Model override; leave unset to use the provider default
#model = ""

# Send at most this many recent screenshots to the model (0 = default of 10)
#only_n_most_recent_images = 10

# Hide screenshots in the transcript
#hide_images = false
`, GetDefaultDataDir())
	return os.WriteFile(path, []byte(template), 0600)
}
