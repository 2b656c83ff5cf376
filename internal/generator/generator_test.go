package generator

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/faucetdb/modelgen/internal/connector"
	"github.com/faucetdb/modelgen/internal/connector/connectortest"
	"github.com/faucetdb/modelgen/internal/inspect"
	"github.com/faucetdb/modelgen/internal/model"
)

func defaultOptions(dir string) Options {
	return Options{
		Dir:       dir,
		Namespace: `App\Models`,
		BaseClass: `Illuminate\Database\Eloquent\Model`,
		Extension: "php",
	}
}

func TestClassName(t *testing.T) {
	tests := []struct {
		table string
		want  string
	}{
		{"user_accounts", "UserAccounts"},
		{"order", "Order"},
		{"order_items", "OrderItems"},
		{"API_keys", "APIKeys"},
		{"iPhone_sales", "IPhoneSales"},
		{"double__underscore", "DoubleUnderscore"},
		{"_leading", "Leading"},
		{"v2_events", "V2Events"},
		{"my table", "MyTable"},
		{"line_items\tarchive", "LineItemsArchive"},
		{"user-accounts", "User-accounts"},
		{"order.items", "Order.items"},
		{"éclair_orders", "ÉclairOrders"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			if got := ClassName(tt.table); got != tt.want {
				t.Errorf("ClassName(%q) = %q, want %q", tt.table, got, tt.want)
			}
		})
	}
}

func TestRenderOrderItems(t *testing.T) {
	g, err := New(defaultOptions(t.TempDir()), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := g.Render("shop", "OrderItems", model.TableDescriptor{
		Name:       "order_items",
		Columns:    []string{"id", "order_id", "sku", "qty"},
		PrimaryKey: "id",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := `<?php

namespace App\Models\shop;

use Illuminate\Database\Eloquent\Model;

class OrderItems extends Model {
    protected $table = 'order_items';
    protected $primaryKey = 'id';
    protected $fillable = ['id', 'order_id', 'sku', 'qty'];
}
`
	if string(got) != want {
		t.Errorf("Render mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderAuthorHeader(t *testing.T) {
	opts := defaultOptions(t.TempDir())
	opts.Author = "Data Team"
	g, err := New(opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := g.Render("shop", "Logs", model.TableDescriptor{Name: "logs", Columns: []string{"msg"}, PrimaryKey: "id"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(string(got), "<?php\n\n// Author: Data Team\n\nnamespace App\\Models\\shop;\n") {
		t.Errorf("unexpected header:\n%s", got)
	}
}

func TestRenderEscapesLiterals(t *testing.T) {
	g, err := New(defaultOptions(t.TempDir()), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := g.Render("shop", "Odd", model.TableDescriptor{
		Name:       `o'dd`,
		Columns:    []string{`back\slash`, `it's`},
		PrimaryKey: "id",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(got)
	if !strings.Contains(s, `protected $table = 'o\'dd';`) {
		t.Errorf("table literal not escaped:\n%s", s)
	}
	if !strings.Contains(s, `protected $fillable = ['back\\slash', 'it\'s'];`) {
		t.Errorf("fillable literals not escaped:\n%s", s)
	}
}

func TestRenderEmptyColumns(t *testing.T) {
	g, err := New(defaultOptions(t.TempDir()), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := g.Render("shop", "Empty", model.TableDescriptor{Name: "empty", Columns: []string{}, PrimaryKey: "id"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(got), "protected $fillable = [];") {
		t.Errorf("expected empty fillable:\n%s", got)
	}
}

func TestCustomTemplate(t *testing.T) {
	dir := t.TempDir()
	tmplPath := filepath.Join(dir, "model.tmpl")
	src := "{{.Namespace}}|{{.ClassName}}|{{.BaseName}}|{{.PrimaryKey}}|{{className .Table}}|{{len .Columns}}\n"
	if err := os.WriteFile(tmplPath, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := defaultOptions(dir)
	opts.TemplatePath = tmplPath
	g, err := New(opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := g.Render("crm", "Contacts", model.TableDescriptor{Name: "crm_contacts", Columns: []string{"id", "name"}, PrimaryKey: "id"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "App\\Models\\crm|Contacts|Model|id|CrmContacts|2\n"
	if string(got) != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestNewBadTemplate(t *testing.T) {
	dir := t.TempDir()

	opts := defaultOptions(dir)
	opts.TemplatePath = filepath.Join(dir, "missing.tmpl")
	if _, err := New(opts, nil); err == nil {
		t.Error("expected error for missing template file")
	}

	bad := filepath.Join(dir, "bad.tmpl")
	os.WriteFile(bad, []byte("{{.Table"), 0o644)
	opts.TemplatePath = bad
	if _, err := New(opts, nil); err == nil {
		t.Error("expected error for unparsable template")
	}
}

func TestPathNormalizesExtension(t *testing.T) {
	opts := defaultOptions("out")
	opts.Extension = ".php"
	g, err := New(opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := g.Path("shop", "OrderItems")
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if want := filepath.Join("out", "shop", "OrderItems.php"); got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
}

func TestPathRejectsUnsafeNames(t *testing.T) {
	g, err := New(defaultOptions("out"), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		name      string
		database  string
		className string
	}{
		{"ParentDatabase", "..", "Users"},
		{"CurrentDatabase", ".", "Users"},
		{"EmptyDatabase", "", "Users"},
		{"SlashInDatabase", "../../etc", "Users"},
		{"BackslashInDatabase", `a\b`, "Users"},
		{"SlashInClass", "shop", "Orders/Items"},
		{"ParentClass", "shop", ".."},
		{"NulInClass", "shop", "Bad\x00Name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.Path(tt.database, tt.className); !errors.Is(err, ErrUnsafeName) {
				t.Errorf("Path(%q, %q) error = %v, want ErrUnsafeName", tt.database, tt.className, err)
			}
		})
	}

	if _, err := g.Path("shop..archive", "A..b"); err != nil {
		t.Errorf("dots inside a name should be allowed: %v", err)
	}
}

func TestGenerateRejectsEscapingDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Models")
	g, err := New(defaultOptions(dir), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = g.Generate(context.Background(), shopInspector(t), "logs", "Logs", "..")
	if !errors.Is(err, ErrUnsafeName) {
		t.Fatalf("Generate error = %v, want ErrUnsafeName", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "Logs.php")); !os.IsNotExist(err) {
		t.Errorf("model written outside the output directory (stat err = %v)", err)
	}
}

func shopInspector(t *testing.T) *inspect.Inspector {
	t.Helper()
	srv := &connectortest.Server{
		Databases: []string{"shop"},
		Tables: map[string][]connectortest.Table{
			"shop": {
				{Name: "order_items", Columns: []string{"id", "order_id", "sku", "qty"}, PrimaryKey: []string{"id"}},
				{Name: "logs", Columns: []string{"msg", "at"}},
			},
		},
	}
	conn := srv.Factory()()
	if err := conn.Connect(connector.ConnectionConfig{Database: "shop"}); err != nil {
		t.Fatal(err)
	}
	return inspect.New(conn, nil)
}

func TestGenerateWritesFile(t *testing.T) {
	dir := t.TempDir()
	g, err := New(defaultOptions(dir), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	insp := shopInspector(t)

	file, err := g.Generate(context.Background(), insp, "logs", ClassName("logs"), "shop")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	wantPath := filepath.Join(dir, "shop", "Logs.php")
	if file.Path != wantPath {
		t.Errorf("Path = %q, want %q", file.Path, wantPath)
	}
	onDisk, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("read generated file: %v", err)
	}
	if !bytes.Equal(onDisk, file.Content) {
		t.Error("file on disk differs from returned content")
	}
	if !strings.Contains(string(onDisk), "protected $primaryKey = 'id';") {
		t.Errorf("logs without primary key should fall back to id:\n%s", onDisk)
	}
}

func TestGenerateIsByteIdenticalOnRerun(t *testing.T) {
	dir := t.TempDir()
	g, err := New(defaultOptions(dir), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	insp := shopInspector(t)
	ctx := context.Background()

	first, err := g.Generate(ctx, insp, "order_items", "OrderItems", "shop")
	if err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	before, _ := os.ReadFile(first.Path)

	// The directory already exists on the second run.
	second, err := g.Generate(ctx, insp, "order_items", "OrderItems", "shop")
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	after, _ := os.ReadFile(second.Path)

	if !bytes.Equal(before, after) {
		t.Errorf("rerun changed output:\n%s\n---\n%s", before, after)
	}
}

func TestGenerateOverwrites(t *testing.T) {
	dir := t.TempDir()
	g, err := New(defaultOptions(dir), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	path, err := g.Path("shop", "Logs")
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	os.MkdirAll(filepath.Dir(path), 0o755)
	os.WriteFile(path, []byte("stale"), 0o644)

	if _, err := g.Generate(context.Background(), shopInspector(t), "logs", "Logs", "shop"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) == "stale" {
		t.Error("existing file was not overwritten")
	}
}

func TestGenerateDryRun(t *testing.T) {
	dir := t.TempDir()
	opts := defaultOptions(dir)
	opts.DryRun = true
	g, err := New(opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	file, err := g.Generate(context.Background(), shopInspector(t), "order_items", "OrderItems", "shop")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(file.Content) == 0 {
		t.Error("dry run should still render content")
	}
	if _, err := os.Stat(filepath.Join(dir, "shop")); !os.IsNotExist(err) {
		t.Errorf("dry run created output directory (stat err = %v)", err)
	}
}

func TestGenerateUnknownTable(t *testing.T) {
	g, err := New(defaultOptions(t.TempDir()), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := g.Generate(context.Background(), shopInspector(t), "missing", "Missing", "shop"); err == nil {
		t.Fatal("expected error for unknown table")
	}
}

func TestWriteFailsWhenDirectoryIsAFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "shop")
	os.WriteFile(blocker, []byte("x"), 0o644)

	g, err := New(defaultOptions(dir), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	path, err := g.Path("shop", "Logs")
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	err = g.Write(model.ModelFile{Path: path, Content: []byte("x")})
	if err == nil {
		t.Fatal("expected error when database directory is a regular file")
	}
}
