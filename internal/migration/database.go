package migration

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Supported driver names, also the DSN schemes that select them.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// Database is an open results database and the driver behind it.
type Database struct {
	DB     *sql.DB
	Driver string
}

// Close closes the connection pool.
func (d *Database) Close() error {
	return d.DB.Close()
}

// ParseDSN splits a results DSN of the form scheme://rest into a driver
// name and the driver's own DSN. A bare "mysql://" is completed from the
// DB_HOST, DB_PORT, DB_USERNAME, DB_PASSWORD and DB_DATABASE variables.
func ParseDSN(dsn string) (driver, source string, err error) {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return "", "", fmt.Errorf("results DSN %q has no scheme (want mysql:// or sqlite3://)", dsn)
	}
	switch scheme {
	case DriverMySQL:
		if rest == "" {
			rest = mysqlFromEnv()
		}
		return DriverMySQL, rest, nil
	case DriverSQLite, "sqlite":
		if rest == "" {
			return "", "", fmt.Errorf("results DSN %q has no database path", dsn)
		}
		return DriverSQLite, rest, nil
	default:
		return "", "", fmt.Errorf("unsupported results database %q", scheme)
	}
}

func mysqlFromEnv() string {
	// Get database connection info from environment or use defaults
	dbHost := envOr("DB_HOST", "127.0.0.1")
	dbPort := envOr("DB_PORT", "3306")
	dbUser := envOr("DB_USERNAME", "root")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := envOr("DB_DATABASE", "conform")
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", dbUser, dbPassword, dbHost, dbPort, dbName)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Open connects to the results database named by dsn.
func Open(dsn string) (*Database, error) {
	driver, source, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping results database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite only supports one writer at a time
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure sqlite: %w", err)
		}
	}

	return &Database{DB: db, Driver: driver}, nil
}
