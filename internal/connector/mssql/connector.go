package mssql

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/faucetdb/modelgen/internal/connector"
)

// MSSQLConnector implements connector.Connector for SQL Server databases.
type MSSQLConnector struct {
	db         *sqlx.DB
	schemaName string
}

// New creates a new MSSQLConnector with default settings.
func New() connector.Connector {
	return &MSSQLConnector{schemaName: "dbo"}
}

// Connect establishes a connection to SQL Server. When cfg.Database is set
// the DSN's database parameter is replaced before the pool opens.
func (c *MSSQLConnector) Connect(cfg connector.ConnectionConfig) error {
	dsn, err := withDatabase(cfg.DSN, cfg.Database)
	if err != nil {
		return err
	}

	db, err := sqlx.Connect("sqlserver", dsn)
	if err != nil {
		return fmt.Errorf("mssql connect: %w", err)
	}
	connector.ConfigurePool(db, cfg)

	if cfg.SchemaName != "" {
		c.schemaName = cfg.SchemaName
	}

	c.db = db
	return nil
}

// withDatabase points a sqlserver:// URL or an ADO-style connection string
// at database.
func withDatabase(dsn, database string) (string, error) {
	if database == "" {
		return dsn, nil
	}

	if strings.HasPrefix(dsn, "sqlserver://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse mssql dsn: %w", err)
		}
		q := u.Query()
		q.Set("database", database)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}

	parts := strings.Split(dsn, ";")
	out := make([]string, 0, len(parts)+1)
	for _, p := range parts {
		key, _, _ := strings.Cut(p, "=")
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "database", "initial catalog":
			continue
		case "":
			if strings.TrimSpace(p) == "" {
				continue
			}
		}
		out = append(out, p)
	}
	out = append(out, "database="+database)
	return strings.Join(out, ";"), nil
}

// Disconnect closes the database connection pool.
func (c *MSSQLConnector) Disconnect() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping verifies the database connection is alive.
func (c *MSSQLConnector) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// DB returns the underlying sqlx.DB connection pool.
func (c *MSSQLConnector) DB() *sqlx.DB {
	return c.db
}

// DriverName returns the driver identifier for SQL Server.
func (c *MSSQLConnector) DriverName() string { return "mssql" }

// QuoteIdentifier wraps a SQL identifier in brackets, escaping any
// embedded closing brackets to prevent SQL injection.
func (c *MSSQLConnector) QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
