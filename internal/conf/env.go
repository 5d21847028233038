// env.go - Environment variable configuration and validation for birdwatcher
package conf

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "BIRDWATCHER_DEBUG", validateEnvBool},

		// Storage
		{"output.sqlite.path", "BIRDWATCHER_DB_PATH", validateEnvNonEmpty},
		{"output.mysql.enabled", "BIRDWATCHER_MYSQL_ENABLED", validateEnvBool},
		{"output.mysql.host", "BIRDWATCHER_MYSQL_HOST", validateEnvNonEmpty},
		{"output.mysql.port", "BIRDWATCHER_MYSQL_PORT", validateEnvPort},
		{"output.mysql.username", "BIRDWATCHER_MYSQL_USERNAME", nil},
		{"output.mysql.password", "BIRDWATCHER_MYSQL_PASSWORD", nil},
		{"output.mysql.database", "BIRDWATCHER_MYSQL_DATABASE", validateEnvNonEmpty},

		// Location
		{"location.permission", "BIRDWATCHER_LOCATION_PERMISSION", validateEnvPermission},
		{"location.latitude", "BIRDWATCHER_LATITUDE", validateEnvLatitude},
		{"location.longitude", "BIRDWATCHER_LONGITUDE", validateEnvLongitude},
		{"location.timeout", "BIRDWATCHER_LOCATION_TIMEOUT", validateEnvTimeout},

		// Logging
		{"logging.default_level", "BIRDWATCHER_LOG_LEVEL", validateEnvLogLevel},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue, ok := os.LookupEnv(binding.EnvVar); ok {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// Environment variable validation functions

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f, TRUE/FALSE, T/F", value)
	}
	return nil
}

func validateEnvNonEmpty(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("value must not be empty")
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

func validateEnvPermission(value string) error {
	valid := []string{PermissionGranted, PermissionDenied, PermissionPrompt}
	if !slices.Contains(valid, strings.ToLower(value)) {
		return fmt.Errorf("must be one of: %s", strings.Join(valid, ", "))
	}
	return nil
}

func validateEnvLatitude(value string) error {
	lat, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid latitude: %w", err)
	}
	return validateLatitude(lat)
}

func validateEnvLongitude(value string) error {
	lng, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid longitude: %w", err)
	}
	return validateLongitude(lng)
}

func validateEnvTimeout(value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", d)
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	if !isValidLogLevel(value) {
		return fmt.Errorf("must be one of: %s", strings.Join(validLogLevels, ", "))
	}
	return nil
}
