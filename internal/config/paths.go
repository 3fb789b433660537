package config

import (
	"os"
	"path/filepath"

	"github.com/mrz1836/remedy/internal/constants"
)

// GlobalConfigDir returns the global remedy configuration directory
// (~/.remedy). The directory is not created by this function.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.RemedyHome), nil
}

// ProjectConfigPath returns the project-level config path
// (.remedy/config.yaml relative to the working directory).
func ProjectConfigPath() string {
	return filepath.Join(constants.RemedyHome, constants.ConfigFileName)
}
