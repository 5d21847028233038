package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	drivermysql "github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
)

// maxBatchSize caps a single INSERT so it stays under max_allowed_packet
const maxBatchSize = 10000

// Config holds the configuration for the export tool.
type Config struct {
	// Source database
	SQLitePath string

	// Target database - either DSN or individual components
	MySQLDSN      string
	MySQLHost     string
	MySQLPort     int
	MySQLUser     string
	MySQLPass     string
	MySQLDatabase string

	BatchSize  int
	Clean      bool
	SkipVerify bool
	Verbose    bool

	// Config file path for fallback
	ConfigPath string
}

// Load validates the configuration, filling missing connection details
// from the birdwatcher config file.
func (c *Config) Load() error {
	if c.SQLitePath == "" || (c.MySQLDSN == "" && c.MySQLHost == "") {
		if err := c.loadFromConfigFile(); err != nil && c.SQLitePath == "" {
			return fmt.Errorf("--sqlite-path is required (or provide config.yaml): %w", err)
		}
	}

	if c.SQLitePath == "" {
		return fmt.Errorf("--sqlite-path is required")
	}
	if _, err := os.Stat(c.SQLitePath); os.IsNotExist(err) {
		return fmt.Errorf("SQLite database not found: %s", c.SQLitePath)
	}

	if c.MySQLDSN == "" && c.MySQLHost == "" {
		return fmt.Errorf("--mysql-dsn or --mysql-host is required")
	}

	if c.BatchSize < 1 {
		return fmt.Errorf("batch-size must be at least 1")
	}
	if c.BatchSize > maxBatchSize {
		return fmt.Errorf("batch-size too large (max %d)", maxBatchSize)
	}

	return nil
}

// loadFromConfigFile reads connection settings from config.yaml.
func (c *Config) loadFromConfigFile() error {
	v := viper.New()

	configPath := c.ConfigPath
	if configPath == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			p := filepath.Join(homeDir, ".config", "birdwatcher", "config.yaml")
			if _, statErr := os.Stat(p); statErr == nil {
				configPath = p
			}
		}
		if configPath == "" {
			configPath = "config.yaml"
		}
	}

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if c.SQLitePath == "" {
		c.SQLitePath = v.GetString("output.sqlite.path")
	}

	if c.MySQLDSN == "" && c.MySQLHost == "" && v.GetBool("output.mysql.enabled") {
		c.MySQLHost = v.GetString("output.mysql.host")
		c.MySQLPort = v.GetInt("output.mysql.port")
		if c.MySQLPort == 0 {
			c.MySQLPort = 3306
		}
		c.MySQLUser = v.GetString("output.mysql.username")
		c.MySQLPass = v.GetString("output.mysql.password")
		c.MySQLDatabase = v.GetString("output.mysql.database")
	}

	return nil
}

// mysqlConfig returns the driver config for the target database.
// A DSN given directly is parsed; otherwise it is built from components.
func (c *Config) mysqlConfig() (*drivermysql.Config, error) {
	if c.MySQLDSN != "" {
		parsed, err := drivermysql.ParseDSN(c.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
		}
		parsed.ParseTime = true
		return parsed, nil
	}

	mc := drivermysql.NewConfig()
	mc.User = c.MySQLUser
	mc.Passwd = c.MySQLPass
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.MySQLHost, strconv.Itoa(c.MySQLPort))
	mc.DBName = c.MySQLDatabase
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Timeout = 10 * time.Second
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc, nil
}

// GetMySQLDSN returns the MySQL DSN string.
func (c *Config) GetMySQLDSN() (string, error) {
	mc, err := c.mysqlConfig()
	if err != nil {
		return "", err
	}
	return mc.FormatDSN(), nil
}

// GetSanitizedMySQLDSN returns the MySQL DSN with password masked for logging.
func (c *Config) GetSanitizedMySQLDSN() string {
	mc, err := c.mysqlConfig()
	if err != nil {
		return "<invalid dsn>"
	}
	if mc.Passwd != "" {
		mc.Passwd = "****"
	}
	return mc.FormatDSN()
}
