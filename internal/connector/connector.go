package connector

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// ErrTableNotFound is returned by ListColumns when the catalog has no
// columns for the table, which means it does not exist in the selected
// database.
var ErrTableNotFound = errors.New("table not found")

// ConnectionConfig holds database connection parameters.
type ConnectionConfig struct {
	Driver          string
	DSN             string
	Database        string // database to bind the connection to; empty keeps the DSN's own
	SchemaName      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PrivateKeyPath  string // Path to PEM-encoded private key file (Snowflake JWT auth)
}

// Connector is the interface that all database connectors must implement.
type Connector interface {
	// Connection management
	Connect(cfg ConnectionConfig) error
	Disconnect() error
	Ping(ctx context.Context) error
	DB() *sqlx.DB

	// Catalog introspection
	ListDatabases(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context) ([]string, error)
	ListColumns(ctx context.Context, table string) ([]string, error)
	PrimaryKeyColumns(ctx context.Context, table string) ([]string, error)

	// Metadata
	DriverName() string
	QuoteIdentifier(name string) string
}

// ConfigurePool applies the pool settings from cfg to db. Zero values leave
// the database/sql defaults in place.
func ConfigurePool(db *sqlx.DB, cfg ConnectionConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

// SanitizeDSN ensures that URL-style DSNs (postgres://, sqlserver://) have
// their userinfo (especially the password) properly percent-encoded. Raw
// passwords containing @, #, %, or other URL-special characters cause the
// Go URL parser to mis-split the authority component.
//
// MySQL DSNs are normalized to use the tcp() wrapper required by go-sql-driver.
// Snowflake, SQLite and Oracle DSNs are returned unchanged.
func SanitizeDSN(driver, dsn string) string {
	switch driver {
	case "postgres", "mssql":
		return sanitizeURLDSN(dsn)
	case "mysql":
		return sanitizeMySQLDSN(dsn)
	default:
		return dsn
	}
}

// mysqlBareHostPort matches "user:pass@host:port/db" (no tcp() wrapper, no ()
// wrapper). We look for the last "@" followed by what looks like host:port/db.
var mysqlBareHostPort = regexp.MustCompile(`^(.+)@([^(@]+:\d+)(/.*)?$`)

// sanitizeMySQLDSN normalizes a MySQL DSN so that go-sql-driver/mysql can
// parse it correctly. The driver requires the format:
//
//	user:pass@tcp(host:port)/dbname
//
// Common mistakes:
//
//	user:pass@host:port/db          → missing tcp() wrapper
//	user:pass@(host:port)/db        → missing "tcp" before parens
//	user:pass@tcp(host:port)/db     → already correct
func sanitizeMySQLDSN(dsn string) string {
	if cfg, err := mysqldriver.ParseDSN(dsn); err == nil && (cfg.Net == "tcp" || cfg.Net == "unix") {
		return cfg.FormatDSN()
	}

	// Pattern: user:pass@(host:port)/db
	if idx := strings.LastIndex(dsn, "@("); idx >= 0 {
		fixed := dsn[:idx] + "@tcp" + dsn[idx+1:]
		if cfg, err := mysqldriver.ParseDSN(fixed); err == nil {
			return cfg.FormatDSN()
		}
	}

	// Pattern: user:pass@host:port/db
	if m := mysqlBareHostPort.FindStringSubmatch(dsn); m != nil {
		fixed := m[1] + "@tcp(" + m[2] + ")" + m[3]
		if cfg, err := mysqldriver.ParseDSN(fixed); err == nil {
			return cfg.FormatDSN()
		}
	}

	// Let the connect call report the error.
	return dsn
}

// sanitizeURLDSN parses a DSN that begins with a scheme (e.g.
// postgres://user:p@ss#word@host/db) and re-encodes the userinfo so the
// URL library can parse it unambiguously.
func sanitizeURLDSN(dsn string) string {
	schemeEnd := strings.Index(dsn, "://")
	if schemeEnd < 0 {
		return dsn
	}

	scheme := dsn[:schemeEnd]
	rest := dsn[schemeEnd+3:]

	query := ""
	if qi := strings.IndexByte(rest, '?'); qi >= 0 {
		query = rest[qi:]
		rest = rest[:qi]
	}

	// Everything before the LAST '@' is userinfo.
	atIdx := strings.LastIndex(rest, "@")
	if atIdx < 0 {
		return dsn
	}

	userinfo := rest[:atIdx]
	hostpath := rest[atIdx+1:]

	user := userinfo
	pass := ""
	if ci := strings.IndexByte(userinfo, ':'); ci >= 0 {
		user = userinfo[:ci]
		pass = userinfo[ci+1:]
	}

	return scheme + "://" + url.PathEscape(user) + ":" + url.PathEscape(pass) + "@" + hostpath + query
}
