package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faucetdb/modelgen/internal/generator"
	"github.com/faucetdb/modelgen/internal/inspect"
	"github.com/faucetdb/modelgen/internal/model"
	"github.com/faucetdb/modelgen/internal/pipeline"
)

func newDBCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "db",
		Aliases: []string{"database"},
		Short:   "Inspect the source server",
		Long:    "List the databases a generate run would visit and the tables inside one of them.",
	}

	cmd.PersistentFlags().String("driver", "", "Database driver (mysql, postgres, mssql, snowflake, sqlite, oracle)")
	cmd.PersistentFlags().String("dsn", "", "Server connection string")
	cmd.PersistentFlags().String("schema", "", "Schema to read tables from (default depends on driver)")

	cmd.AddCommand(newDBListCmd(opts))
	cmd.AddCommand(newDBTablesCmd(opts))

	return cmd
}

// ---------- db list ----------

func newDBListCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the databases that generate would process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBList(cmd, opts, jsonOutput)
		},
	}

	cmd.Flags().StringSlice("include", nil, "Only list databases matching these glob patterns")
	cmd.Flags().StringSlice("exclude", nil, "Hide databases matching these glob patterns")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runDBList(cmd *cobra.Command, opts *rootOptions, jsonOutput bool) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging, cmd.ErrOrStderr())

	base, err := cfg.ConnectionConfig()
	if err != nil {
		return err
	}

	registry := newRegistry()
	defer registry.CloseAll()

	runner := pipeline.NewRunner(registry, nil, pipeline.Options{
		Source:  base,
		Include: cfg.Databases.Include,
		Exclude: cfg.Databases.Exclude,
	}, cmd.OutOrStdout(), logger)

	dbs, err := runner.ListDatabases(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(dbs)
	}

	if len(dbs) == 0 {
		fmt.Fprintln(out, "No databases found.")
		return nil
	}
	for _, db := range dbs {
		fmt.Fprintln(out, db)
	}
	return nil
}

// ---------- db tables ----------

func newDBTablesCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "tables <database>",
		Short: "Show the tables of a database as generate sees them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBTables(cmd, opts, args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runDBTables(cmd *cobra.Command, opts *rootOptions, database string, jsonOutput bool) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging, cmd.ErrOrStderr())

	base, err := cfg.ConnectionConfig()
	if err != nil {
		return err
	}

	registry := newRegistry()
	defer registry.CloseAll()

	if err := registry.Connect(pipeline.DefaultService, base); err != nil {
		return err
	}
	conn, err := registry.Switch(pipeline.DefaultService, database)
	if err != nil {
		return err
	}

	tables, err := inspect.New(conn, logger).DescribeAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("inspect %s: %w", database, err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if tables == nil {
			tables = []model.TableDescriptor{}
		}
		return enc.Encode(tables)
	}

	if len(tables) == 0 {
		fmt.Fprintf(out, "No tables in %s.\n", database)
		return nil
	}

	fmt.Fprintf(out, "%-30s %-30s %-20s %s\n", "TABLE", "CLASS", "PRIMARY KEY", "COLUMNS")
	fmt.Fprintf(out, "%-30s %-30s %-20s %s\n", "-----", "-----", "-----------", "-------")
	for _, t := range tables {
		fmt.Fprintf(out, "%-30s %-30s %-20s %d\n", t.Name, generator.ClassName(t.Name), t.PrimaryKey, len(t.Columns))
	}
	return nil
}
