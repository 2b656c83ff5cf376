// Package oracle implements connector.Connector for Oracle Database using
// the pure-Go go-ora driver. Oracle has no separate catalogs per server, so
// the "databases" it enumerates are schemas (users); the selected one
// qualifies every catalog query.
package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2"

	"github.com/faucetdb/modelgen/internal/connector"
)

// OracleConnector implements connector.Connector for Oracle databases.
type OracleConnector struct {
	db    *sqlx.DB
	owner string
}

// New creates a new OracleConnector.
func New() connector.Connector {
	return &OracleConnector{}
}

// Connect opens an oracle:// DSN. The owner used for introspection is
// cfg.Database, then cfg.SchemaName, then the session's current schema.
func (c *OracleConnector) Connect(cfg connector.ConnectionConfig) error {
	db, err := sqlx.Connect("oracle", cfg.DSN)
	if err != nil {
		return fmt.Errorf("oracle connect: %w", err)
	}
	connector.ConfigurePool(db, cfg)

	switch {
	case cfg.Database != "":
		c.owner = cfg.Database
	case cfg.SchemaName != "":
		c.owner = cfg.SchemaName
	default:
		const query = `SELECT SYS_CONTEXT('USERENV', 'CURRENT_SCHEMA') FROM DUAL`
		if err := db.Get(&c.owner, query); err != nil {
			db.Close()
			return fmt.Errorf("oracle current schema: %w", err)
		}
	}

	c.db = db
	return nil
}

// Disconnect closes the database connection pool.
func (c *OracleConnector) Disconnect() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping verifies the database connection is alive.
func (c *OracleConnector) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// DB returns the underlying sqlx.DB connection pool.
func (c *OracleConnector) DB() *sqlx.DB {
	return c.db
}

// DriverName returns the driver identifier for Oracle.
func (c *OracleConnector) DriverName() string { return "oracle" }

// QuoteIdentifier wraps a SQL identifier in double quotes, escaping any
// embedded double quotes.
func (c *OracleConnector) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
