// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
	"github.com/tphakala/birdwatcher/internal/logger"
)

// DefaultLocationTimeout bounds the wait for a position fix
const DefaultLocationTimeout = 10 * time.Second

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "birdwatcher")

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "birdwatcher.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "birdwatcher")
	viper.SetDefault("output.mysql.password", "")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
	viper.SetDefault("output.mysql.database", "birdwatcher")

	viper.SetDefault("location.permission", PermissionPrompt)
	viper.SetDefault("location.timeout", DefaultLocationTimeout)

	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.default_level", logger.DefaultLogLevel)
	viper.SetDefault("logging.console.enabled", logger.DefaultConsoleEnabled)
	viper.SetDefault("logging.console.level", logger.DefaultConsoleLevel)
	viper.SetDefault("logging.file_output.enabled", logger.DefaultFileEnabled)
	viper.SetDefault("logging.file_output.path", logger.DefaultLogPath)
	viper.SetDefault("logging.file_output.level", logger.DefaultLogLevel)
}
