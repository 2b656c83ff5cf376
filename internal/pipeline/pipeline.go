// Package pipeline drives a generation run: enumerate databases, bind the
// connection to each in turn, and generate a model per table.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/faucetdb/modelgen/internal/connector"
	"github.com/faucetdb/modelgen/internal/generator"
	"github.com/faucetdb/modelgen/internal/inspect"
)

// DefaultService is the registry service name a run connects under.
const DefaultService = "source"

// Options configures a Runner.
type Options struct {
	Service string
	Source  connector.ConnectionConfig
	Include []string // glob patterns; empty selects every database
	Exclude []string // glob patterns applied after Include
}

// Runner executes one generation run.
type Runner struct {
	registry *connector.Registry
	gen      *generator.Generator
	opts     Options
	out      io.Writer
	logger   *slog.Logger
}

// NewRunner wires a Runner. Progress lines go to out; diagnostics go to
// logger.
func NewRunner(registry *connector.Registry, gen *generator.Generator, opts Options, out io.Writer, logger *slog.Logger) *Runner {
	if opts.Service == "" {
		opts.Service = DefaultService
	}
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{registry: registry, gen: gen, opts: opts, out: out, logger: logger}
}

// Run connects to the source server, lists its databases and generates
// models for each selected one. Only a failure to connect or to list
// databases aborts the run; errors inside a database are recorded in the
// report and the run continues with the next database.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	dbs, err := r.ListDatabases(ctx)
	if err != nil {
		return nil, err
	}
	defer r.registry.Disconnect(r.opts.Service)

	report := &Report{}
	for _, db := range dbs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		fmt.Fprintf(r.out, "Generating models for database: %s\n", db)

		res := r.processDatabase(ctx, db)
		report.Databases = append(report.Databases, res)

		if res.Err != nil {
			fmt.Fprintf(r.out, "An error occurred in %s: %v\n", db, res.Err.Err)
			r.logger.Error("database failed", "database", db, "error", res.Err.Err)
			continue
		}
		fmt.Fprintf(r.out, "Models generated successfully for %s\n", db)
		r.logger.Info("database done", "database", db, "tables", len(res.Tables))
	}
	return report, nil
}

// ListDatabases connects the service with the base config and returns the
// databases that pass the include and exclude filters, in server order.
func (r *Runner) ListDatabases(ctx context.Context) ([]string, error) {
	if err := r.registry.Connect(r.opts.Service, r.opts.Source); err != nil {
		return nil, err
	}
	conn, err := r.registry.Get(r.opts.Service)
	if err != nil {
		return nil, err
	}

	all, err := conn.ListDatabases(ctx)
	if err != nil {
		r.registry.Disconnect(r.opts.Service)
		return nil, fmt.Errorf("list databases: %w", err)
	}

	selected := make([]string, 0, len(all))
	for _, db := range all {
		if r.selected(db) {
			selected = append(selected, db)
			continue
		}
		r.logger.Debug("database filtered out", "database", db)
	}
	return selected, nil
}

func (r *Runner) selected(db string) bool {
	if len(r.opts.Include) > 0 && !matchAny(r.opts.Include, db) {
		return false
	}
	return !matchAny(r.opts.Exclude, db)
}

// matchAny reports whether name matches one of patterns. Malformed patterns
// never match; config validation rejects them up front.
func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}

func (r *Runner) processDatabase(ctx context.Context, db string) DatabaseResult {
	res := DatabaseResult{Name: db}
	fail := func(err error) DatabaseResult {
		res.Err = &DatabaseError{Database: db, Err: err}
		return res
	}

	conn, err := r.registry.Switch(r.opts.Service, db)
	if err != nil {
		return fail(err)
	}

	insp := inspect.New(conn, r.logger.With("database", db))
	tables, err := insp.ListTables(ctx)
	if err != nil {
		return fail(err)
	}

	for _, table := range tables {
		className := generator.ClassName(table)
		file, err := r.gen.Generate(ctx, insp, table, className, db)
		if err != nil {
			return fail(err)
		}
		res.Tables = append(res.Tables, table)
		res.Files = append(res.Files, file.Path)
		fmt.Fprintf(r.out, "Model generated for %s: %s\n", table, file.Path)
	}
	return res
}
