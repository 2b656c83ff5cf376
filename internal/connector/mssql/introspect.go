package mssql

import (
	"context"
	"fmt"

	"github.com/faucetdb/modelgen/internal/connector"
)

// databaseRow holds a row of sys.databases.
type databaseRow struct {
	Name string `db:"name"`
}

// tableRow holds the result of querying INFORMATION_SCHEMA.TABLES.
type tableRow struct {
	TableName string `db:"TABLE_NAME"`
	TableType string `db:"TABLE_TYPE"`
}

// columnRow holds the result of querying INFORMATION_SCHEMA.COLUMNS.
type columnRow struct {
	ColumnName string `db:"COLUMN_NAME"`
	Position   int    `db:"ORDINAL_POSITION"`
}

// pkRow holds a primary key column mapping.
type pkRow struct {
	ColumnName string `db:"COLUMN_NAME"`
	Position   int    `db:"ORDINAL_POSITION"`
}

// ListDatabases returns the online databases on the server in creation
// order.
func (c *MSSQLConnector) ListDatabases(ctx context.Context) ([]string, error) {
	const query = `SELECT name FROM sys.databases
		WHERE state_desc = 'ONLINE'
		ORDER BY database_id`

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

// ListTables returns the tables and views of the configured schema.
func (c *MSSQLConnector) ListTables(ctx context.Context) ([]string, error) {
	const query = `SELECT TABLE_NAME, TABLE_TYPE
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = @p1
		ORDER BY TABLE_NAME`

	var rows []tableRow
	if err := c.db.SelectContext(ctx, &rows, query, c.schemaName); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.TableName)
	}
	return names, nil
}

// ListColumns returns the column names of table in ordinal order.
func (c *MSSQLConnector) ListColumns(ctx context.Context, table string) ([]string, error) {
	const query = `SELECT COLUMN_NAME, ORDINAL_POSITION
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
		ORDER BY ORDINAL_POSITION`

	var rows []columnRow
	if err := c.db.SelectContext(ctx, &rows, query, c.schemaName, table); err != nil {
		return nil, fmt.Errorf("list columns for %q: %w", table, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %q", connector.ErrTableNotFound, table)
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.ColumnName)
	}
	return names, nil
}

// PrimaryKeyColumns returns the primary key columns of table in key order.
func (c *MSSQLConnector) PrimaryKeyColumns(ctx context.Context, table string) ([]string, error) {
	const query = `SELECT kcu.COLUMN_NAME, kcu.ORDINAL_POSITION
		FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
		JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
			ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
			AND tc.TABLE_SCHEMA = kcu.TABLE_SCHEMA
		WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
			AND tc.TABLE_SCHEMA = @p1
			AND tc.TABLE_NAME = @p2
		ORDER BY kcu.ORDINAL_POSITION`

	var rows []pkRow
	if err := c.db.SelectContext(ctx, &rows, query, c.schemaName, table); err != nil {
		return nil, fmt.Errorf("primary key for %q: %w", table, err)
	}

	cols := make([]string, 0, len(rows))
	for _, r := range rows {
		cols = append(cols, r.ColumnName)
	}
	return cols, nil
}
