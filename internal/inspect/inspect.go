// Package inspect reads the table, column and primary key metadata that
// model generation needs from a connected database.
package inspect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/faucetdb/modelgen/internal/connector"
	"github.com/faucetdb/modelgen/internal/model"
)

// Inspector answers catalog questions against the database a connector is
// currently bound to. It holds no state of its own; every call goes to the
// server.
type Inspector struct {
	conn   connector.Connector
	logger *slog.Logger
}

// New returns an Inspector over conn. A nil logger discards output.
func New(conn connector.Connector, logger *slog.Logger) *Inspector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Inspector{conn: conn, logger: logger}
}

// ListTables returns the table names of the bound database.
func (i *Inspector) ListTables(ctx context.Context) ([]string, error) {
	return i.conn.ListTables(ctx)
}

// ListColumns returns the column names of table in server order.
func (i *Inspector) ListColumns(ctx context.Context, table string) ([]string, error) {
	return i.conn.ListColumns(ctx, table)
}

// PrimaryKey returns the first primary key column of table, or
// model.DefaultPrimaryKey when the table declares none. For composite keys
// only the first column is returned and the rest are logged.
func (i *Inspector) PrimaryKey(ctx context.Context, table string) (string, error) {
	cols, err := i.conn.PrimaryKeyColumns(ctx, table)
	if err != nil {
		return "", err
	}

	switch len(cols) {
	case 0:
		i.logger.Debug("no primary key, using default",
			"table", table,
			"primary_key", model.DefaultPrimaryKey,
		)
		return model.DefaultPrimaryKey, nil
	case 1:
		return cols[0], nil
	default:
		i.logger.Warn("composite primary key truncated to first column",
			"table", table,
			"primary_key", cols[0],
			"ignored", cols[1:],
		)
		return cols[0], nil
	}
}

// Describe collects the columns and primary key of table.
func (i *Inspector) Describe(ctx context.Context, table string) (model.TableDescriptor, error) {
	cols, err := i.ListColumns(ctx, table)
	if err != nil {
		return model.TableDescriptor{}, err
	}

	pk, err := i.PrimaryKey(ctx, table)
	if err != nil {
		return model.TableDescriptor{}, err
	}

	if cols == nil {
		cols = []string{}
	}
	return model.TableDescriptor{Name: table, Columns: cols, PrimaryKey: pk}, nil
}

// DescribeAll describes every table of the bound database, in the order
// ListTables returns them.
func (i *Inspector) DescribeAll(ctx context.Context) ([]model.TableDescriptor, error) {
	tables, err := i.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.TableDescriptor, 0, len(tables))
	for _, t := range tables {
		d, err := i.Describe(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("describe %q: %w", t, err)
		}
		out = append(out, d)
	}
	return out, nil
}
