// Package connectortest provides an in-memory connector.Connector for
// tests of code that sits above the drivers.
package connectortest

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/faucetdb/modelgen/internal/connector"
)

// Table is a table of a fake database. A table without columns is listed
// by ListTables but reported missing by ListColumns, like a table dropped
// between the two calls.
type Table struct {
	Name       string
	Columns    []string
	PrimaryKey []string
}

// Server is a fake database server. Databases are listed in the order of
// Databases; each one's tables come from Tables.
type Server struct {
	Databases []string
	Tables    map[string][]Table

	// ListErr is returned by ListDatabases.
	ListErr error
	// ConnectErr fails Connect for the named database.
	ConnectErr map[string]error
	// TableErr fails ListTables for the named database.
	TableErr map[string]error

	mu       sync.Mutex
	connects []string
	open     int
}

// Factory returns a connector.Factory producing connectors to s.
func (s *Server) Factory() connector.Factory {
	return func() connector.Connector { return &Conn{srv: s} }
}

// Connects returns the database of every successful Connect, in order. The
// server-level connection made without a database is recorded as "".
func (s *Server) Connects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.connects...)
}

// Open returns the number of connections not yet disconnected.
func (s *Server) Open() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Conn is a connection to a fake Server.
type Conn struct {
	srv       *Server
	database  string
	connected bool
}

func (c *Conn) Connect(cfg connector.ConnectionConfig) error {
	if err := c.srv.ConnectErr[cfg.Database]; err != nil {
		return err
	}
	c.srv.mu.Lock()
	c.srv.connects = append(c.srv.connects, cfg.Database)
	c.srv.open++
	c.srv.mu.Unlock()

	c.database = cfg.Database
	c.connected = true
	return nil
}

func (c *Conn) Disconnect() error {
	if c.connected {
		c.srv.mu.Lock()
		c.srv.open--
		c.srv.mu.Unlock()
		c.connected = false
	}
	return nil
}

func (c *Conn) Ping(context.Context) error {
	if !c.connected {
		return fmt.Errorf("not connected")
	}
	return nil
}

func (c *Conn) DB() *sqlx.DB { return nil }

func (c *Conn) ListDatabases(context.Context) ([]string, error) {
	if c.srv.ListErr != nil {
		return nil, c.srv.ListErr
	}
	return append([]string(nil), c.srv.Databases...), nil
}

func (c *Conn) ListTables(context.Context) ([]string, error) {
	if !c.connected {
		return nil, fmt.Errorf("not connected")
	}
	if err := c.srv.TableErr[c.database]; err != nil {
		return nil, err
	}
	var names []string
	for _, t := range c.srv.Tables[c.database] {
		names = append(names, t.Name)
	}
	return names, nil
}

func (c *Conn) ListColumns(_ context.Context, table string) ([]string, error) {
	t, err := c.table(table)
	if err != nil {
		return nil, err
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("%w: %q", connector.ErrTableNotFound, table)
	}
	return append([]string{}, t.Columns...), nil
}

func (c *Conn) PrimaryKeyColumns(_ context.Context, table string) ([]string, error) {
	t, err := c.table(table)
	if err != nil {
		return nil, err
	}
	return append([]string{}, t.PrimaryKey...), nil
}

func (c *Conn) table(name string) (Table, error) {
	if !c.connected {
		return Table{}, fmt.Errorf("not connected")
	}
	for _, t := range c.srv.Tables[c.database] {
		if t.Name == name {
			return t, nil
		}
	}
	return Table{}, fmt.Errorf("%w: %q in %q", connector.ErrTableNotFound, name, c.database)
}

func (c *Conn) DriverName() string { return "fake" }

func (c *Conn) QuoteIdentifier(name string) string { return `"` + name + `"` }
