package snowflake

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/faucetdb/modelgen/internal/connector"
)

// SnowflakeConnector implements connector.Connector for Snowflake accounts.
type SnowflakeConnector struct {
	db         *sqlx.DB
	schemaName string
}

// New creates a new SnowflakeConnector with default settings.
func New() connector.Connector {
	return &SnowflakeConnector{schemaName: "PUBLIC"}
}

// Connect establishes a connection to Snowflake. cfg.Database replaces the
// database segment of the DSN.
//
// If PrivateKeyPath is set, the connector uses JWT (key pair) authentication
// instead of username/password. The private key file must be PEM-encoded
// (PKCS#1 or PKCS#8 format).
func (c *SnowflakeConnector) Connect(cfg connector.ConnectionConfig) error {
	dsn, err := buildDSN(cfg.DSN, cfg.Database, cfg.PrivateKeyPath)
	if err != nil {
		return fmt.Errorf("snowflake dsn: %w", err)
	}

	db, err := sqlx.Connect("snowflake", dsn)
	if err != nil {
		return fmt.Errorf("snowflake connect: %w", err)
	}
	connector.ConfigurePool(db, cfg)

	if cfg.SchemaName != "" {
		c.schemaName = cfg.SchemaName
	}

	c.db = db
	return nil
}

// Disconnect closes the database connection pool.
func (c *SnowflakeConnector) Disconnect() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping verifies the database connection is alive.
func (c *SnowflakeConnector) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// DB returns the underlying sqlx.DB connection pool.
func (c *SnowflakeConnector) DB() *sqlx.DB {
	return c.db
}

// DriverName returns the driver identifier for Snowflake.
func (c *SnowflakeConnector) DriverName() string { return "snowflake" }

// QuoteIdentifier wraps a SQL identifier in double quotes for Snowflake.
// Snowflake identifiers are case-sensitive when quoted.
func (c *SnowflakeConnector) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
