// conf/validate.go

package conf

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

var validLogLevels = []string{"trace", "debug", "info", "warn", "error"}

func isValidLogLevel(level string) bool {
	return slices.Contains(validLogLevels, strings.ToLower(level))
}

// ValidateSettings validates the entire Settings struct. It normalizes
// case-insensitive values and fills a zero location timeout with the default.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateOutputSettings(settings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateLocationSettings(&settings.Location); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateLoggingSettings(settings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}

	return nil
}

func validateOutputSettings(settings *Settings) error {
	sqlite := settings.Output.SQLite
	mysql := settings.Output.MySQL

	if !sqlite.Enabled && !mysql.Enabled {
		return fmt.Errorf("either output.sqlite or output.mysql must be enabled")
	}

	if sqlite.Enabled && strings.TrimSpace(sqlite.Path) == "" {
		return fmt.Errorf("output.sqlite.path must not be empty")
	}

	if mysql.Enabled && !sqlite.Enabled {
		var missing []string
		if mysql.Host == "" {
			missing = append(missing, "host")
		}
		if mysql.Database == "" {
			missing = append(missing, "database")
		}
		if mysql.Username == "" {
			missing = append(missing, "username")
		}
		if len(missing) > 0 {
			return fmt.Errorf("output.mysql is missing: %s", strings.Join(missing, ", "))
		}
		if mysql.Port != "" {
			if port, err := strconv.Atoi(mysql.Port); err != nil || port < 1 || port > 65535 {
				return fmt.Errorf("output.mysql.port must be a number between 1 and 65535, got %q", mysql.Port)
			}
		}
	}

	return nil
}

func validateLocationSettings(loc *LocationConfig) error {
	loc.Permission = strings.ToLower(strings.TrimSpace(loc.Permission))
	if loc.Permission == "" {
		loc.Permission = PermissionPrompt
	}
	if err := validateEnvPermission(loc.Permission); err != nil {
		return fmt.Errorf("location.permission: %w", err)
	}

	if (loc.Latitude == nil) != (loc.Longitude == nil) {
		return fmt.Errorf("location.latitude and location.longitude must be set together")
	}
	if loc.Latitude != nil {
		if err := validateLatitude(*loc.Latitude); err != nil {
			return fmt.Errorf("location.latitude: %w", err)
		}
		if err := validateLongitude(*loc.Longitude); err != nil {
			return fmt.Errorf("location.longitude: %w", err)
		}
	}

	switch {
	case loc.Timeout == 0:
		loc.Timeout = DefaultLocationTimeout
	case loc.Timeout < 0:
		return fmt.Errorf("location.timeout must be positive, got %s", loc.Timeout)
	}

	return nil
}

func validateLoggingSettings(settings *Settings) error {
	cfg := &settings.Logging

	levels := map[string]string{"logging.default_level": cfg.DefaultLevel}
	if cfg.Console != nil {
		levels["logging.console.level"] = cfg.Console.Level
	}
	if cfg.FileOutput != nil {
		levels["logging.file_output.level"] = cfg.FileOutput.Level
	}
	for module, out := range cfg.ModuleOutputs {
		levels["logging.modules."+module+".level"] = out.Level
	}

	var invalid []string
	for key, level := range levels {
		if level != "" && !isValidLogLevel(level) {
			invalid = append(invalid, fmt.Sprintf("%s=%q", key, level))
		}
	}
	if len(invalid) > 0 {
		slices.Sort(invalid)
		return fmt.Errorf("invalid log levels (%s), expected one of: %s",
			strings.Join(invalid, ", "), strings.Join(validLogLevels, ", "))
	}

	// Debug mode turns on debug output for the file log
	if settings.Debug && cfg.DefaultLevel != "trace" {
		cfg.DefaultLevel = "debug"
	}

	return nil
}

func validateLatitude(lat float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %g", lat)
	}
	return nil
}

func validateLongitude(lng float64) error {
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %g", lng)
	}
	return nil
}
