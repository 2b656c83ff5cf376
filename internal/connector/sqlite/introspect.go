package sqlite

import (
	"context"
	"fmt"
	"sort"

	"github.com/faucetdb/modelgen/internal/connector"
)

// databaseRow holds a row from PRAGMA database_list().
type databaseRow struct {
	Seq  int    `db:"seq"`
	Name string `db:"name"`
	File string `db:"file"`
}

// masterRow holds a row of sqlite_master.
type masterRow struct {
	Name string `db:"name"`
	Type string `db:"type"`
}

// tableInfoRow holds a row from PRAGMA table_info().
type tableInfoRow struct {
	CID     int     `db:"cid"`
	Name    string  `db:"name"`
	Type    string  `db:"type"`
	NotNull int     `db:"notnull"`
	Default *string `db:"dflt_value"`
	PK      int     `db:"pk"`
}

// ListDatabases returns "main" followed by any attached databases. The
// connection-private "temp" schema is skipped.
func (c *SQLiteConnector) ListDatabases(ctx context.Context) ([]string, error) {
	var rows []databaseRow
	if err := c.db.SelectContext(ctx, &rows, "PRAGMA database_list"); err != nil {
		return nil, fmt.Errorf("database_list: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Name == "temp" {
			continue
		}
		names = append(names, r.Name)
	}
	return names, nil
}

// ListTables returns the user tables and views of the selected database.
func (c *SQLiteConnector) ListTables(ctx context.Context) ([]string, error) {
	query := `SELECT name, type FROM ` + c.QuoteIdentifier(c.schemaName) + `.sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
		ORDER BY name`

	var rows []masterRow
	if err := c.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Name)
	}
	return names, nil
}

func (c *SQLiteConnector) tableInfo(ctx context.Context, table string) ([]tableInfoRow, error) {
	query := fmt.Sprintf("PRAGMA %s.table_info(%s)", c.QuoteIdentifier(c.schemaName), c.QuoteIdentifier(table))
	var rows []tableInfoRow
	if err := c.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("table_info for %q: %w", table, err)
	}
	return rows, nil
}

// ListColumns returns the column names of table in declaration order.
// table_info is empty for a table that does not exist.
func (c *SQLiteConnector) ListColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := c.tableInfo(ctx, table)
	if err != nil {
		return nil, err
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

// PrimaryKeyColumns returns the primary key columns of table ordered by
// their position in the key. Rowid tables without a declared key yield an
// empty slice.
func (c *SQLiteConnector) PrimaryKeyColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := c.tableInfo(ctx, table)
	if err != nil {
		return nil, err
	}

	var keyed []tableInfoRow
	for _, r := range rows {
		if r.PK > 0 {
			keyed = append(keyed, r)
		}
	}
	sort.Slice(keyed, func(i, j int) bool { return keyed[i].PK < keyed[j].PK })

	cols := make([]string, 0, len(keyed))
	for _, r := range keyed {
		cols = append(cols, r.Name)
	}
	return cols, nil
}
