package inspect

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/faucetdb/modelgen/internal/connector"
	"github.com/faucetdb/modelgen/internal/connector/connectortest"
	"github.com/faucetdb/modelgen/internal/model"
)

func newInspector(t *testing.T, srv *connectortest.Server, database string, logger *slog.Logger) *Inspector {
	t.Helper()
	conn := srv.Factory()()
	if err := conn.Connect(connector.ConnectionConfig{Driver: "fake", Database: database}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { conn.Disconnect() })
	return New(conn, logger)
}

func shopServer() *connectortest.Server {
	return &connectortest.Server{
		Databases: []string{"shop"},
		Tables: map[string][]connectortest.Table{
			"shop": {
				{Name: "order_items", Columns: []string{"id", "order_id", "sku", "qty"}, PrimaryKey: []string{"id"}},
				{Name: "logs", Columns: []string{"msg", "at"}},
				{Name: "order_tags", Columns: []string{"order_id", "tag_id"}, PrimaryKey: []string{"order_id", "tag_id"}},
				{Name: "tokens", Columns: []string{"token", "user_id"}, PrimaryKey: []string{"token"}},
			},
		},
	}
}

func TestPrimaryKey(t *testing.T) {
	insp := newInspector(t, shopServer(), "shop", nil)

	tests := []struct {
		table string
		want  string
	}{
		{table: "order_items", want: "id"},
		{table: "logs", want: model.DefaultPrimaryKey},
		{table: "order_tags", want: "order_id"},
		{table: "tokens", want: "token"},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			got, err := insp.PrimaryKey(context.Background(), tt.table)
			if err != nil {
				t.Fatalf("PrimaryKey: %v", err)
			}
			if got != tt.want {
				t.Errorf("PrimaryKey(%q) = %q, want %q", tt.table, got, tt.want)
			}
		})
	}
}

func TestPrimaryKeyCompositeLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	insp := newInspector(t, shopServer(), "shop", logger)

	if _, err := insp.PrimaryKey(context.Background(), "order_tags"); err != nil {
		t.Fatalf("PrimaryKey: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "tag_id") {
		t.Errorf("expected warning naming ignored column, got %q", out)
	}
}

func TestPrimaryKeyError(t *testing.T) {
	insp := newInspector(t, shopServer(), "shop", nil)
	if _, err := insp.PrimaryKey(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown table")
	}
}

func TestDescribe(t *testing.T) {
	insp := newInspector(t, shopServer(), "shop", nil)

	d, err := insp.Describe(context.Background(), "order_items")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if d.Name != "order_items" || d.PrimaryKey != "id" {
		t.Errorf("Describe = %+v", d)
	}
	if strings.Join(d.Columns, ",") != "id,order_id,sku,qty" {
		t.Errorf("Columns = %v, want server order", d.Columns)
	}
}

func TestDescribeAll(t *testing.T) {
	insp := newInspector(t, shopServer(), "shop", nil)

	all, err := insp.DescribeAll(context.Background())
	if err != nil {
		t.Fatalf("DescribeAll: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("DescribeAll returned %d tables, want 4", len(all))
	}
	if all[1].Name != "logs" || all[1].PrimaryKey != "id" {
		t.Errorf("logs = %+v, want fallback primary key", all[1])
	}
}

func TestListTablesError(t *testing.T) {
	srv := shopServer()
	srv.TableErr = map[string]error{"shop": errors.New("access denied")}
	insp := newInspector(t, srv, "shop", nil)

	_, err := insp.ListTables(context.Background())
	if err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Fatalf("ListTables error = %v, want access denied", err)
	}
	if _, err := insp.DescribeAll(context.Background()); err == nil {
		t.Fatal("DescribeAll should surface ListTables error")
	}
}
