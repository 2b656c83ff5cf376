// Package generator renders model classes from table metadata and writes
// them to disk, one file per table.
package generator

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/faucetdb/modelgen/internal/inspect"
	"github.com/faucetdb/modelgen/internal/model"
)

//go:embed templates/model.php.tmpl
var templates embed.FS

const defaultTemplate = "templates/model.php.tmpl"

// Options controls where model files go and what they contain.
type Options struct {
	Dir          string // root output directory; files land in Dir/<database>/
	Namespace    string // namespace prefix; the database name is appended
	BaseClass    string // fully qualified class the models extend
	Extension    string // file extension without the dot
	Author       string // optional author line in the file header
	TemplatePath string // replaces the embedded template when set
	DryRun       bool   // render but do not touch the filesystem
}

// TemplateData is the value a model template is executed with.
type TemplateData struct {
	Database   string
	Namespace  string
	BaseClass  string
	BaseName   string
	ClassName  string
	Table      string
	PrimaryKey string
	Columns    []string
	Author     string
}

// Generator turns table descriptors into model files.
type Generator struct {
	opts   Options
	tmpl   *template.Template
	logger *slog.Logger
}

// New parses the model template named by opts (or the embedded default)
// and returns a Generator.
func New(opts Options, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Extension == "" {
		opts.Extension = "php"
	}
	opts.Extension = strings.TrimPrefix(opts.Extension, ".")

	var (
		src []byte
		err error
	)
	if opts.TemplatePath != "" {
		src, err = os.ReadFile(opts.TemplatePath)
	} else {
		src, err = templates.ReadFile(defaultTemplate)
	}
	if err != nil {
		return nil, fmt.Errorf("read model template: %w", err)
	}

	tmpl, err := template.New("model").
		Funcs(template.FuncMap{"phpString": phpString, "phpList": phpList, "className": ClassName}).
		Option("missingkey=error").
		Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse model template: %w", err)
	}

	return &Generator{opts: opts, tmpl: tmpl, logger: logger}, nil
}

// ErrUnsafeName is returned when a database or class name cannot be used
// as a single path element under the output directory.
var ErrUnsafeName = errors.New("name is not a safe file name")

// Path returns the file a model for className in database is written to.
// Names that would escape the database directory are rejected.
func (g *Generator) Path(database, className string) (string, error) {
	for _, name := range []string{database, className} {
		if !safePathElement(name) {
			return "", fmt.Errorf("%w: %q", ErrUnsafeName, name)
		}
	}
	return filepath.Join(g.opts.Dir, database, className+"."+g.opts.Extension), nil
}

func safePathElement(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}

// Render executes the model template for table.
func (g *Generator) Render(database, className string, table model.TableDescriptor) ([]byte, error) {
	ns := database
	if g.opts.Namespace != "" {
		ns = strings.TrimSuffix(g.opts.Namespace, `\`) + `\` + database
	}

	data := TemplateData{
		Database:   database,
		Namespace:  ns,
		BaseClass:  g.opts.BaseClass,
		BaseName:   baseName(g.opts.BaseClass),
		ClassName:  className,
		Table:      table.Name,
		PrimaryKey: table.PrimaryKey,
		Columns:    table.Columns,
		Author:     g.opts.Author,
	}

	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", className, err)
	}
	return buf.Bytes(), nil
}

// Write creates the file's directory if needed and writes the file,
// replacing any previous content. In dry-run mode nothing is written.
func (g *Generator) Write(file model.ModelFile) error {
	if g.opts.DryRun {
		g.logger.Debug("dry run, skipping write", "path", file.Path, "bytes", len(file.Content))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(file.Path), 0o755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}
	if err := os.WriteFile(file.Path, file.Content, 0o644); err != nil {
		return fmt.Errorf("write model file: %w", err)
	}
	return nil
}

// Generate reads the columns and primary key of table through insp, renders
// the model class and writes it under the database's directory.
func (g *Generator) Generate(ctx context.Context, insp *inspect.Inspector, table, className, database string) (model.ModelFile, error) {
	desc, err := insp.Describe(ctx, table)
	if err != nil {
		return model.ModelFile{}, err
	}

	content, err := g.Render(database, className, desc)
	if err != nil {
		return model.ModelFile{}, err
	}

	path, err := g.Path(database, className)
	if err != nil {
		return model.ModelFile{}, err
	}

	file := model.ModelFile{Path: path, Content: content}
	if err := g.Write(file); err != nil {
		return model.ModelFile{}, err
	}
	return file, nil
}
