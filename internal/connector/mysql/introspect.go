package mysql

import (
	"context"
	"fmt"
	"sort"
)

// databaseRow holds a row of SHOW DATABASES.
type databaseRow struct {
	Name string `db:"Database"`
}

// tableRow holds a row of SHOW TABLES. The column is named after the
// current database (Tables_in_<db>), so it is scanned positionally.
type tableRow struct {
	Name string
}

// columnRow holds a row of SHOW COLUMNS.
type columnRow struct {
	Field   string  `db:"Field"`
	Type    string  `db:"Type"`
	Null    string  `db:"Null"`
	Key     string  `db:"Key"`
	Default *string `db:"Default"`
	Extra   string  `db:"Extra"`
}

// keyRow holds the fields of SHOW KEYS this package reads. The statement
// returns more columns than these, so it is selected through an unsafe
// mapper.
type keyRow struct {
	Table      string `db:"Table"`
	KeyName    string `db:"Key_name"`
	SeqInIndex int    `db:"Seq_in_index"`
	ColumnName string `db:"Column_name"`
}

// ListDatabases returns every database visible to the connection, in the
// order the server reports them.
func (c *MySQLConnector) ListDatabases(ctx context.Context) ([]string, error) {
	var rows []databaseRow
	if err := c.db.SelectContext(ctx, &rows, "SHOW DATABASES"); err != nil {
		return nil, fmt.Errorf("show databases: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Name)
	}
	return names, nil
}

// ListTables returns the tables of the connection's current database.
func (c *MySQLConnector) ListTables(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryxContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, fmt.Errorf("show tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var t tableRow
		if err := rows.Scan(&t.Name); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		names = append(names, t.Name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("show tables: %w", err)
	}
	return names, nil
}

// ListColumns returns the column names of table in ordinal order.
func (c *MySQLConnector) ListColumns(ctx context.Context, table string) ([]string, error) {
	query := "SHOW COLUMNS FROM " + c.QuoteIdentifier(table)

	var rows []columnRow
	if err := c.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("show columns for %q: %w", table, err)
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Field)
	}
	return names, nil
}

// PrimaryKeyColumns returns the PRIMARY index columns of table ordered by
// their position in the index. A table without a primary key yields an
// empty slice.
func (c *MySQLConnector) PrimaryKeyColumns(ctx context.Context, table string) ([]string, error) {
	query := "SHOW KEYS FROM " + c.QuoteIdentifier(table) + " WHERE Key_name = 'PRIMARY'"

	var rows []keyRow
	if err := c.db.Unsafe().SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("show keys for %q: %w", table, err)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].SeqInIndex < rows[j].SeqInIndex })

	cols := make([]string, 0, len(rows))
	for _, r := range rows {
		cols = append(cols, r.ColumnName)
	}
	return cols, nil
}
