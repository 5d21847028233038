// conf/utils.go various util functions for configuration package
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/tphakala/birdwatcher/internal/errors"
)

const osWindows = "windows"

// GetDefaultConfigPaths returns a list of default configuration paths for the current operating system.
// If a config.yaml file is found in any of the paths, it returns that path as the only default.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategorySystem).
			Context("operation", "get-home-directory").
			Build()
	}

	var configPaths []string
	switch runtime.GOOS {
	case osWindows:
		exePath, err := os.Executable()
		if err != nil {
			return nil, errors.New(err).
				Category(errors.CategorySystem).
				Context("operation", "get-executable-path").
				Build()
		}
		configPaths = []string{
			filepath.Dir(exePath),
			filepath.Join(homeDir, "AppData", "Roaming", "birdwatcher"),
		}
	default:
		configPaths = []string{
			filepath.Join(homeDir, ".config", "birdwatcher"),
			"/etc/birdwatcher",
		}
	}

	for _, path := range configPaths {
		if _, err := os.Stat(filepath.Join(path, "config.yaml")); err == nil {
			return []string{path}, nil
		}
	}

	return configPaths, nil
}

// FindConfigFile locates the configuration file.
func FindConfigFile() (string, error) {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return "", errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "find-config-paths").
			Build()
	}

	for _, path := range configPaths {
		configFilePath := filepath.Join(path, "config.yaml")
		if _, err := os.Stat(configFilePath); err == nil {
			return configFilePath, nil
		}
	}

	return "", errors.Newf("config file not found").
		Category(errors.CategoryNotFound).
		Context("operation", "find-config-file").
		Context("search_paths", configPaths).
		Build()
}

// GetBasePath expands environment variables in path and creates the
// directory if it does not exist yet.
func GetBasePath(path string) string {
	basePath := filepath.Clean(os.ExpandEnv(path))

	if _, err := os.Stat(basePath); os.IsNotExist(err) {
		if err := os.MkdirAll(basePath, 0o750); err != nil {
			// Opening the database reports the real failure
			fmt.Fprintf(os.Stderr, "failed to create directory '%s': %v\n", basePath, err)
		}
	}

	return basePath
}
