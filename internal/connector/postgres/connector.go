package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/faucetdb/modelgen/internal/connector"
)

// PostgresConnector implements connector.Connector for PostgreSQL databases.
type PostgresConnector struct {
	db         *sqlx.DB
	schemaName string

	// registered is the pgx stdlib name of a rewritten connection config,
	// released on Disconnect.
	registered string
}

// New creates a new PostgresConnector with default settings.
func New() connector.Connector {
	return &PostgresConnector{schemaName: "public"}
}

// Connect establishes a connection to the PostgreSQL server. PostgreSQL
// binds a session to one database at connect time, so cfg.Database is
// applied by rewriting the parsed connection config before the pool opens.
func (c *PostgresConnector) Connect(cfg connector.ConnectionConfig) error {
	dsn := cfg.DSN
	if cfg.Database != "" {
		connCfg, err := databaseConfig(cfg.DSN, cfg.Database)
		if err != nil {
			return err
		}
		dsn = stdlib.RegisterConnConfig(connCfg)
		c.registered = dsn
	}

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		c.release()
		return fmt.Errorf("postgres connect: %w", err)
	}
	connector.ConfigurePool(db, cfg)

	if cfg.SchemaName != "" {
		c.schemaName = cfg.SchemaName
	}

	c.db = db
	return nil
}

// databaseConfig parses dsn (URL or keyword/value form) and points it at
// database.
func databaseConfig(dsn, database string) (*pgx.ConnConfig, error) {
	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	connCfg.Database = database
	return connCfg, nil
}

// Disconnect closes the database connection pool.
func (c *PostgresConnector) Disconnect() error {
	defer c.release()
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *PostgresConnector) release() {
	if c.registered != "" {
		stdlib.UnregisterConnConfig(c.registered)
		c.registered = ""
	}
}

// Ping verifies the database connection is alive.
func (c *PostgresConnector) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// DB returns the underlying sqlx.DB connection pool.
func (c *PostgresConnector) DB() *sqlx.DB {
	return c.db
}

// DriverName returns the driver identifier for PostgreSQL.
func (c *PostgresConnector) DriverName() string { return "postgres" }

// QuoteIdentifier wraps a SQL identifier in double quotes, escaping any
// embedded double quotes to prevent SQL injection.
func (c *PostgresConnector) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
