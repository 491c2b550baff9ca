package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type ServerConfig struct {
	URL          string `toml:"url"`
	DefaultModel string `toml:"default_model"`
}

type AgentConfig struct {
	Temperature   float64 `toml:"temperature"`
	MaxIterations int     `toml:"max_iterations"`
}

type UserConfig struct {
	Server         ServerConfig `toml:"server"`
	Agent          AgentConfig  `toml:"agent"`
	ArchiveEnabled bool         `toml:"archive_enabled"`
}

type Config struct {
	DataDirectory  string
	ServerURL      string
	DefaultModel   string
	Temperature    float64
	MaxIterations  int
	ArchiveEnabled bool

	// Keybindings is loaded from keybindings.toml in the data directory.
	Keybindings *KeyBindingsConfig
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("CHEMTUI_SERVER_URL"); url != "" {
		c.ServerURL = url
	}
	if model := os.Getenv("CHEMTUI_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if dataDir := os.Getenv("CHEMTUI_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
}

func CheckDebug() bool {
	debug := os.Getenv("CHEMTUI_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: debug output can include request payloads
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (CHEMTUI_DEBUG=%s) ===", os.Getenv("CHEMTUI_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

func HasAllEnvVars() bool {
	return os.Getenv("CHEMTUI_SERVER_URL") != "" &&
		os.Getenv("CHEMTUI_DATA_DIR") != ""
}

func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory:  "~/.local/share/chemtui",
		ServerURL:      "http://localhost:8000",
		DefaultModel:   "deepseek-chat",
		Temperature:    0.1,
		MaxIterations:  8,
		ArchiveEnabled: true,
	}

	if HasAllEnvVars() && !SystemConfigExists() {
		cfg.applyEnvOverrides()
	} else {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		cfg.DataDirectory = systemCfg.DataDirectory

		userCfg, err := LoadUserConfig(cfg.DataDir())
		if err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
		cfg.ServerURL = userCfg.Server.URL
		cfg.DefaultModel = userCfg.Server.DefaultModel
		cfg.Temperature = userCfg.Agent.Temperature
		cfg.MaxIterations = userCfg.Agent.MaxIterations
		cfg.ArchiveEnabled = userCfg.ArchiveEnabled

		// Env vars win over files for one-off overrides.
		cfg.applyEnvOverrides()
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	kb, err := LoadKeybindings(dataDir)
	if err != nil {
		// A broken keybindings file never blocks startup.
		if DebugLog != nil {
			DebugLog.Printf("[config] keybindings load failed, using defaults: %v", err)
		}
		kb = DefaultKeybindings()
	}
	cfg.Keybindings = kb

	return cfg, nil
}
