package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - BITA_CONFIG_PATH: config file location (default: ~/.config/bita.toml)
//   - BITA_HOME: base directory for bita data (default: ~/.local/share/bita)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"media_dir":   filepath.Join(baseDir, "media"),
	}, nil
}

// getConfigPath returns the config file path, checking BITA_CONFIG_PATH env var
// first, then falling back to the default ~/.config/bita.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("BITA_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "bita.toml"), nil
}

// getBaseDir returns the base directory for bita data, checking BITA_HOME env
// var first, then falling back to the XDG default ~/.local/share/bita.
func getBaseDir() (string, error) {
	if path := os.Getenv("BITA_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "bita"), nil
}
