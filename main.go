package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"chemtui/api"
	"chemtui/config"
	"chemtui/model"
	"chemtui/storage"
	"chemtui/ui"
)

const (
	Version = "v0.1.0"
	License = "Apache-2.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	dataDir := cfg.DataDir()
	if err := config.EnsureDataDirPermissions(dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to prepare data directory: %v\n", err)
		os.Exit(1)
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(dataDir)

	// Prefer the SSH-encrypted store when a chemtui key has been set up,
	// fall back to plain text otherwise.
	method := config.SecurityPlainText
	keyPath := ""
	if config.ChemtuiKeyExists() {
		method = config.SecuritySSHKey
		keyPath = config.GetChemtuiKeyPath()
	}
	creds := config.NewCredentialStore(method, keyPath)
	if err := creds.Load(dataDir); err != nil {
		// A broken credential file means logging in again, not a crash
		if config.DebugLog != nil {
			config.DebugLog.Printf("[main] credential load failed: %v", err)
		}
	}

	client := api.NewClient(cfg.ServerURL)
	if token := creds.Token(); token != "" {
		client.SetToken(token)
	}

	var archive *storage.Archive
	if cfg.ArchiveEnabled {
		archive, err = storage.OpenArchive(dataDir)
		if err != nil {
			// The archive is a local convenience, the client works without it
			if config.DebugLog != nil {
				config.DebugLog.Printf("[main] archive unavailable: %v", err)
			}
			archive = nil
		}
	}
	if archive != nil {
		defer archive.Close()
	}

	dataModel := model.NewModel(cfg, client, creds, archive, Version)

	p := tea.NewProgram(
		ui.NewAppView(dataModel),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
