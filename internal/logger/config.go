package logger

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Timezone      string                  `yaml:"timezone" mapstructure:"timezone"`           // "Local", "UTC", or IANA timezone name like "Europe/Helsinki"
	DefaultLevel  string                  `yaml:"default_level" mapstructure:"default_level"` // default log level for all modules
	Console       *ConsoleOutput          `yaml:"console" mapstructure:"console"`             // console output configuration
	FileOutput    *FileOutput             `yaml:"file_output" mapstructure:"file_output"`     // file output configuration
	ModuleOutputs map[string]ModuleOutput `yaml:"modules" mapstructure:"modules"`             // per-module output configuration
	ModuleLevels  map[string]string       `yaml:"module_levels" mapstructure:"module_levels"` // per-module log levels
}

// ConsoleOutput represents console logging configuration.
// Console output is text without timestamps; the terminal session provides context.
type ConsoleOutput struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Level   string `yaml:"level" mapstructure:"level"`
}

// FileOutput represents file logging configuration.
// File output uses JSON format with RFC3339 timestamps.
type FileOutput struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
	Level   string `yaml:"level" mapstructure:"level"`
}

// ModuleOutput represents per-module output configuration
type ModuleOutput struct {
	Enabled     bool   `yaml:"enabled" mapstructure:"enabled"`           // enable module-specific output
	FilePath    string `yaml:"file_path" mapstructure:"file_path"`       // dedicated file path for this module
	Level       string `yaml:"level" mapstructure:"level"`               // log level override for this module
	ConsoleAlso bool   `yaml:"console_also" mapstructure:"console_also"` // also log to console
}

// Default values for logging configuration.
// These match the defaults in conf/defaults.go.
const (
	DefaultLogLevel          = "info"
	DefaultConsoleLevel      = "warn"
	DefaultLogPath           = "logs/birdwatcher.log"
	DefaultDatastoreLogPath  = "logs/datastore.log"
	DefaultConsoleEnabled    = true
	DefaultFileEnabled       = true
	DefaultDatastoreModule   = "datastore"
	DefaultDatastoreFileMode = true
)

// applyConfigDefaults fills nil sections so a config file without a
// logging block still gets console warnings and a file log.
func applyConfigDefaults(cfg *LoggingConfig) {
	if cfg == nil {
		return
	}

	if cfg.DefaultLevel == "" {
		cfg.DefaultLevel = DefaultLogLevel
	}

	if cfg.Console == nil {
		cfg.Console = &ConsoleOutput{
			Enabled: DefaultConsoleEnabled,
			Level:   DefaultConsoleLevel,
		}
	}

	if cfg.FileOutput == nil {
		cfg.FileOutput = &FileOutput{
			Enabled: DefaultFileEnabled,
			Path:    DefaultLogPath,
			Level:   DefaultLogLevel,
		}
	}

	if cfg.ModuleOutputs == nil {
		cfg.ModuleOutputs = make(map[string]ModuleOutput)
	}

	// SQL traces are noisy, keep them out of the main log
	if _, exists := cfg.ModuleOutputs[DefaultDatastoreModule]; !exists {
		cfg.ModuleOutputs[DefaultDatastoreModule] = ModuleOutput{
			Enabled:  DefaultDatastoreFileMode,
			FilePath: DefaultDatastoreLogPath,
			Level:    DefaultLogLevel,
		}
	}
}
