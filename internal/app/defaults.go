package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - FTL_CONFIG_PATH: config file location (default: ./ftl.toml)
//   - FTL_HOME: base directory for ftl data (default: ./.ftl)
//
// Relative defaults resolve against the working directory, since a site and
// its build state usually live together.
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
		"source_dir":  filepath.Dir(configPath),
	}, nil
}

// getConfigPath returns the config file path, checking FTL_CONFIG_PATH first,
// then falling back to ftl.toml in the working directory.
func getConfigPath() (string, error) {
	if path := os.Getenv("FTL_CONFIG_PATH"); path != "" {
		return filepath.Abs(path)
	}
	abs, err := filepath.Abs("ftl.toml")
	if err != nil {
		return "", fmt.Errorf("cannot determine working directory: %w", err)
	}
	return abs, nil
}

// getBaseDir returns the base directory for ftl data, checking FTL_HOME first,
// then falling back to .ftl in the working directory.
func getBaseDir() (string, error) {
	if path := os.Getenv("FTL_HOME"); path != "" {
		return filepath.Abs(path)
	}
	abs, err := filepath.Abs(".ftl")
	if err != nil {
		return "", fmt.Errorf("cannot determine working directory: %w", err)
	}
	return abs, nil
}
