package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/faucetdb/modelgen/internal/connector"
)

// SQLiteConnector implements connector.Connector for SQLite databases.
// A database reported by PRAGMA database_list ("main" or an attached
// name) is selected as the schema qualifier of every catalog query.
type SQLiteConnector struct {
	db         *sqlx.DB
	schemaName string
}

// New creates a new SQLiteConnector with default settings.
func New() connector.Connector {
	return &SQLiteConnector{schemaName: "main"}
}

// Connect opens a connection to the SQLite database file specified in the DSN.
// The DSN should be a file path (e.g., "/path/to/db.sqlite") or ":memory:"
// for an in-memory database. Query parameters like ?_pragma=busy_timeout(5000)
// are passed through to the driver.
func (c *SQLiteConnector) Connect(cfg connector.ConnectionConfig) error {
	db, err := sqlx.Connect("sqlite", cfg.DSN)
	if err != nil {
		return fmt.Errorf("sqlite connect: %w", err)
	}
	connector.ConfigurePool(db, cfg)

	switch {
	case cfg.Database != "":
		c.schemaName = cfg.Database
	case cfg.SchemaName != "":
		c.schemaName = cfg.SchemaName
	}

	c.db = db
	return nil
}

// Disconnect closes the database connection.
func (c *SQLiteConnector) Disconnect() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping verifies the database connection is alive.
func (c *SQLiteConnector) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// DB returns the underlying sqlx.DB connection pool.
func (c *SQLiteConnector) DB() *sqlx.DB {
	return c.db
}

// DriverName returns the driver identifier for SQLite.
func (c *SQLiteConnector) DriverName() string { return "sqlite" }

// QuoteIdentifier wraps a SQL identifier in double quotes, escaping any
// embedded double quotes to prevent SQL injection.
func (c *SQLiteConnector) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
