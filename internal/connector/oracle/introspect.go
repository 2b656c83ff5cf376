package oracle

import (
	"context"
	"fmt"

	"github.com/faucetdb/modelgen/internal/connector"
)

type userRow struct {
	Username string `db:"USERNAME"`
}

type tableRow struct {
	TableName string `db:"TABLE_NAME"`
}

type columnRow struct {
	ColumnName string `db:"COLUMN_NAME"`
	ColumnID   int    `db:"COLUMN_ID"`
}

type pkRow struct {
	ColumnName string `db:"COLUMN_NAME"`
	Position   int    `db:"POSITION"`
}

// ListDatabases returns the schemas visible to the session.
func (c *OracleConnector) ListDatabases(ctx context.Context) ([]string, error) {
	const query = `SELECT USERNAME FROM ALL_USERS ORDER BY USERNAME`

	var rows []userRow
	if err := c.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Username)
	}
	return names, nil
}

// ListTables returns the tables owned by the selected schema.
func (c *OracleConnector) ListTables(ctx context.Context) ([]string, error) {
	const query = `SELECT TABLE_NAME FROM ALL_TABLES
		WHERE OWNER = :1
		ORDER BY TABLE_NAME`

	var rows []tableRow
	if err := c.db.SelectContext(ctx, &rows, query, c.owner); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.TableName)
	}
	return names, nil
}

// ListColumns returns the column names of table ordered by COLUMN_ID.
func (c *OracleConnector) ListColumns(ctx context.Context, table string) ([]string, error) {
	const query = `SELECT COLUMN_NAME, COLUMN_ID FROM ALL_TAB_COLUMNS
		WHERE OWNER = :1 AND TABLE_NAME = :2
		ORDER BY COLUMN_ID`

	var rows []columnRow
	if err := c.db.SelectContext(ctx, &rows, query, c.owner, table); err != nil {
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

// PrimaryKeyColumns returns the columns of table's 'P' constraint in key
// order.
func (c *OracleConnector) PrimaryKeyColumns(ctx context.Context, table string) ([]string, error) {
	const query = `SELECT cc.COLUMN_NAME, cc.POSITION
		FROM ALL_CONSTRAINTS con
		JOIN ALL_CONS_COLUMNS cc
			ON con.OWNER = cc.OWNER
			AND con.CONSTRAINT_NAME = cc.CONSTRAINT_NAME
		WHERE con.CONSTRAINT_TYPE = 'P'
			AND con.OWNER = :1
			AND con.TABLE_NAME = :2
		ORDER BY cc.POSITION`

	var rows []pkRow
	if err := c.db.SelectContext(ctx, &rows, query, c.owner, table); err != nil {
		return nil, fmt.Errorf("primary key for %q: %w", table, err)
	}

	cols := make([]string, 0, len(rows))
	for _, r := range rows {
		cols = append(cols, r.ColumnName)
	}
	return cols, nil
}
