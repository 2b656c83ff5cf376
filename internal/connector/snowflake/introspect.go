package snowflake

import (
	"context"
	"fmt"
	"sort"

	"github.com/faucetdb/modelgen/internal/connector"
)

// databaseRow holds the column of SHOW DATABASES this package reads.
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

// pkRow holds the columns of SHOW PRIMARY KEYS this package reads.
type pkRow struct {
	ColumnName  string `db:"column_name"`
	KeySequence int    `db:"key_sequence"`
}

// ListDatabases returns the databases visible to the current role. SHOW
// output carries many more columns than name, so it is read through an
// unsafe mapper.
func (c *SnowflakeConnector) ListDatabases(ctx context.Context) ([]string, error) {
	var rows []databaseRow
	if err := c.db.Unsafe().SelectContext(ctx, &rows, "SHOW DATABASES"); err != nil {
		return nil, fmt.Errorf("show databases: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Name)
	}
	return names, nil
}

// ListTables returns the tables and views of the configured schema.
func (c *SnowflakeConnector) ListTables(ctx context.Context) ([]string, error) {
	const query = `SELECT TABLE_NAME, TABLE_TYPE
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ?
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
func (c *SnowflakeConnector) ListColumns(ctx context.Context, table string) ([]string, error) {
	const query = `SELECT COLUMN_NAME, ORDINAL_POSITION
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
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
func (c *SnowflakeConnector) PrimaryKeyColumns(ctx context.Context, table string) ([]string, error) {
	query := fmt.Sprintf(`SHOW PRIMARY KEYS IN TABLE %s.%s`,
		c.QuoteIdentifier(c.schemaName),
		c.QuoteIdentifier(table),
	)

	var rows []pkRow
	if err := c.db.Unsafe().SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("primary key for %q: %w", table, err)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].KeySequence < rows[j].KeySequence })

	cols := make([]string, 0, len(rows))
	for _, r := range rows {
		cols = append(cols, r.ColumnName)
	}
	return cols, nil
}
