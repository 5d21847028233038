package datastore

import (
	"context"
	"net"
	"time"

	drivermysql "github.com/go-sql-driver/mysql"
	"github.com/tphakala/birdwatcher/internal/conf"
	"github.com/tphakala/birdwatcher/internal/errors"
	"github.com/tphakala/birdwatcher/internal/logger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// MySQLStore implements Interface for a MySQL server
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

func validateMySQLConfig(settings *conf.Settings) error {
	cfg := settings.Output.MySQL
	switch {
	case cfg.Host == "":
		return configError("mysql host is empty")
	case cfg.Database == "":
		return configError("mysql database is empty")
	case cfg.Username == "":
		return configError("mysql username is empty")
	}
	return nil
}

// mysqlDSN builds the connection string with the driver's own formatter,
// which the driver is guaranteed to parse back even for odd passwords
func mysqlDSN(settings *conf.Settings) string {
	cfg := drivermysql.NewConfig()
	cfg.User = settings.Output.MySQL.Username
	cfg.Passwd = settings.Output.MySQL.Password
	cfg.Net = "tcp"
	port := settings.Output.MySQL.Port
	if port == "" {
		port = "3306"
	}
	cfg.Addr = net.JoinHostPort(settings.Output.MySQL.Host, port)
	cfg.DBName = settings.Output.MySQL.Database
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Timeout = 10 * time.Second
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// Open connects to the MySQL database
func (store *MySQLStore) Open(ctx context.Context) error {
	if err := validateMySQLConfig(store.Settings); err != nil {
		return err
	}

	db, err := gorm.Open(mysql.Open(mysqlDSN(store.Settings)), &gorm.Config{
		Logger: createGormLogger(store.Settings.Debug, store.getMetrics()),
	})
	if err == nil {
		err = pingDB(ctx, db)
	}
	if err != nil {
		GetLogger().Error("Failed to open MySQL database",
			logger.String("host", store.Settings.Output.MySQL.Host),
			logger.String("port", store.Settings.Output.MySQL.Port),
			logger.String("database", store.Settings.Output.MySQL.Database),
			logger.Error(err))
		return dbError(ErrStorageUnavailable, err, "open", errors.PriorityCritical,
			"backend", "mysql",
			"host", store.Settings.Output.MySQL.Host,
			"database", store.Settings.Output.MySQL.Database)
	}

	store.DB = db
	GetLogger().Info("MySQL database opened",
		logger.String("host", store.Settings.Output.MySQL.Host),
		logger.String("database", store.Settings.Output.MySQL.Database))
	return nil
}

// Close closes the MySQL connection pool
func (store *MySQLStore) Close() error {
	return store.closeDB("mysql")
}
