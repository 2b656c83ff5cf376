package mysql

import (
	"context"
	"fmt"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/faucetdb/modelgen/internal/connector"
)

// MySQLConnector implements connector.Connector for MySQL and MariaDB
// servers.
type MySQLConnector struct {
	db *sqlx.DB
}

// New creates a new MySQLConnector with default settings.
func New() connector.Connector {
	return &MySQLConnector{}
}

// Connect establishes a connection to the MySQL server. When cfg.Database
// is set the DSN is rewritten so every session of the pool uses it as the
// default database, which is what SHOW TABLES and SHOW KEYS resolve against.
func (c *MySQLConnector) Connect(cfg connector.ConnectionConfig) error {
	dsn, err := withDatabase(cfg.DSN, cfg.Database)
	if err != nil {
		return err
	}

	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return fmt.Errorf("mysql connect: %w", err)
	}
	connector.ConfigurePool(db, cfg)

	c.db = db
	return nil
}

// withDatabase returns dsn with its database component replaced by
// database. An empty database returns dsn unchanged.
func withDatabase(dsn, database string) (string, error) {
	if database == "" {
		return dsn, nil
	}
	cfg, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.DBName = database
	return cfg.FormatDSN(), nil
}

// Disconnect closes the database connection pool.
func (c *MySQLConnector) Disconnect() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping verifies the database connection is alive.
func (c *MySQLConnector) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// DB returns the underlying sqlx.DB connection pool.
func (c *MySQLConnector) DB() *sqlx.DB {
	return c.db
}

// DriverName returns the driver identifier for MySQL.
func (c *MySQLConnector) DriverName() string { return "mysql" }

// QuoteIdentifier wraps a SQL identifier in backticks, escaping any
// embedded backticks to prevent SQL injection.
func (c *MySQLConnector) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
