package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config files are created on first load from the commented templates in
// defaults.go, so a fresh install always has editable files on disk.
// Both carry 0600: the system config names the data directory and the
// user config the server endpoint.

// LoadSystemConfig reads ~/.config/chemtui/settings.toml, seeding it
// from the template when missing.
func LoadSystemConfig() (*SystemConfig, error) {
	path := GetSettingsFilePath()
	if !FileExists(path) {
		if err := seedConfigFile(GetConfigDir(), path, GenerateSystemConfigTemplate()); err != nil {
			return nil, fmt.Errorf("failed to create system config: %w", err)
		}
		return DefaultSystemConfig(), nil
	}

	cfg := DefaultSystemConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}
	return cfg, nil
}

// SystemConfigExists reports whether settings.toml is already on disk,
// without seeding it the way LoadSystemConfig does.
func SystemConfigExists() bool {
	return FileExists(GetSettingsFilePath())
}

// LoadUserConfig reads <dataDir>/config.toml, seeding it from the
// template when missing.
func LoadUserConfig(dataDir string) (*UserConfig, error) {
	path := filepath.Join(dataDir, "config.toml")
	if !FileExists(path) {
		if err := seedConfigFile(dataDir, path, GenerateUserConfigTemplate()); err != nil {
			return nil, fmt.Errorf("failed to create user config: %w", err)
		}
		return DefaultUserConfig(), nil
	}

	cfg := DefaultUserConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}
	return cfg, nil
}

// SaveSystemConfig rewrites settings.toml. The commented template is
// replaced by plain TOML; the settings editor owns the file from here.
func SaveSystemConfig(cfg *SystemConfig) error {
	if err := EnsureDir(GetConfigDir()); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return writeTOML(GetSettingsFilePath(), cfg)
}

// SaveUserConfig rewrites <dataDir>/config.toml.
func SaveUserConfig(cfg *UserConfig, dataDir string) error {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return writeTOML(filepath.Join(dataDir, "config.toml"), cfg)
}

func seedConfigFile(dir, path, template string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if FileExists(path) {
		return nil
	}
	if err := os.WriteFile(path, []byte(template), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeTOML(path string, v any) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
