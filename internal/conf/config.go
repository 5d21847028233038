// Package conf provides configuration management for birdwatcher.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"github.com/tphakala/birdwatcher/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// Location permission modes
const (
	PermissionGranted = "granted"
	PermissionDenied  = "denied"
	PermissionPrompt  = "prompt"
)

// LocationConfig controls how positions are captured for new observations
type LocationConfig struct {
	Permission string        // granted, denied or prompt
	Latitude   *float64      // fixed latitude reported when permission is granted, nil if unset
	Longitude  *float64      // fixed longitude reported when permission is granted, nil if unset
	Timeout    time.Duration // maximum wait for a position fix
}

// Position returns the configured coordinates. ok is false unless both
// latitude and longitude are set.
func (l *LocationConfig) Position() (lat, lng float64, ok bool) {
	if l.Latitude == nil || l.Longitude == nil {
		return 0, 0, false
	}
	return *l.Latitude, *l.Longitude, true
}

// Settings contains all configuration options for birdwatcher.
type Settings struct {
	Debug bool // true to enable debug mode

	// Runtime values, not stored in config file
	Version   string `yaml:"-" mapstructure:"-"` // Version from build
	BuildDate string `yaml:"-" mapstructure:"-"` // Build date from build

	Main struct {
		Name string // name of this field log
	}

	Output struct {
		SQLite struct {
			Enabled bool   // true to enable sqlite output
			Path    string // path to sqlite database
		}

		MySQL struct {
			Enabled  bool   // true to enable mysql output
			Username string // username for mysql database
			Password string // password for mysql database
			Database string // database name for mysql database
			Host     string // host for mysql database
			Port     string // port for mysql database
		}
	}

	Location LocationConfig // position capture

	Logging logger.LoggingConfig // centralized logging configuration
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a Settings
// instance. When no config file exists one is created from the embedded default.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
// An explicit file set with viper.SetConfigFile takes precedence over the search paths.
func initViper() error {
	explicitFile := viper.ConfigFileUsed() != ""

	if !explicitFile {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		configPaths, err := GetDefaultConfigPaths()
		if err != nil {
			return fmt.Errorf("error getting default config paths: %w", err)
		}
		for _, path := range configPaths {
			viper.AddConfigPath(path)
		}
	}

	setDefaultConfig()

	if err := bindEnvVars(); err != nil {
		return err
	}

	err := viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !explicitFile && errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config to the first config path
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")

	defaultConfig, err := getDefaultConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, defaultConfig, 0o600); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	// stdout is reserved for command output such as exports
	fmt.Fprintln(os.Stderr, "Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() ([]byte, error) {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return nil, fmt.Errorf("error reading embedded config file: %w", err)
	}
	return data, nil
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}
