// Package config handles configuration loading, env interpolation, and
// profile resolution.
package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the global embertail directory.
	GlobalDirName = ".embertail"

	// ProfilesFileName is the name of the profiles file.
	ProfilesFileName = "profiles.yaml"
)

// GlobalDir returns the path to the global embertail directory (~/.embertail/).
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

// DefaultConfigFile returns the path to the default profiles.yaml file.
func DefaultConfigFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProfilesFileName), nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
