package postgres

import (
	"context"
	"fmt"

	"github.com/faucetdb/modelgen/internal/connector"
)

// databaseRow holds a row of pg_database.
type databaseRow struct {
	Name string `db:"datname"`
}

// tableRow holds the result of querying information_schema.tables.
type tableRow struct {
	Name string `db:"table_name"`
}

// columnRow holds the result of querying information_schema.columns.
type columnRow struct {
	Name     string `db:"column_name"`
	Position int    `db:"ordinal_position"`
}

// keyRow holds a primary key column mapping.
type keyRow struct {
	ColumnName string `db:"column_name"`
	Position   int    `db:"ordinal_position"`
}

// ListDatabases returns every database that accepts connections, skipping
// templates.
func (c *PostgresConnector) ListDatabases(ctx context.Context) ([]string, error) {
	const query = `SELECT datname FROM pg_database
		WHERE NOT datistemplate AND datallowconn
		ORDER BY datname`

	var rows []databaseRow
	if err := c.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Name)
	}
	return names, nil
}

// ListTables returns the tables and views of the configured schema in the
// connected database.
func (c *PostgresConnector) ListTables(ctx context.Context) ([]string, error) {
	const query = `SELECT table_name FROM information_schema.tables
		WHERE table_schema = $1 AND table_type IN ('BASE TABLE', 'VIEW')
		ORDER BY table_name`

	var rows []tableRow
	if err := c.db.SelectContext(ctx, &rows, query, c.schemaName); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Name)
	}
	return names, nil
}

// ListColumns returns the column names of table in ordinal order.
func (c *PostgresConnector) ListColumns(ctx context.Context, table string) ([]string, error) {
	const query = `SELECT column_name, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`

	var rows []columnRow
	if err := c.db.SelectContext(ctx, &rows, query, c.schemaName, table); err != nil {
		return nil, fmt.Errorf("list columns for %q: %w", table, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %q", connector.ErrTableNotFound, table)
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Name)
	}
	return names, nil
}

// PrimaryKeyColumns returns the primary key columns of table in key order.
func (c *PostgresConnector) PrimaryKeyColumns(ctx context.Context, table string) ([]string, error) {
	const query = `SELECT kcu.column_name, kcu.ordinal_position
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY kcu.ordinal_position`

	var rows []keyRow
	if err := c.db.SelectContext(ctx, &rows, query, c.schemaName, table); err != nil {
		return nil, fmt.Errorf("primary key for %q: %w", table, err)
	}

	cols := make([]string, 0, len(rows))
	for _, r := range rows {
		cols = append(cols, r.ColumnName)
	}
	return cols, nil
}
