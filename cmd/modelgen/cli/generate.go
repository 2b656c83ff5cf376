package cli

import (
	"github.com/spf13/cobra"

	"github.com/faucetdb/modelgen/internal/config"
	"github.com/faucetdb/modelgen/internal/generator"
	"github.com/faucetdb/modelgen/internal/pipeline"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a model class for every table of every database",
		Long: `Connect to the configured server, list its databases and write one model file
per table to <output>/<database>/<ClassName>.<extension>.

Existing files are overwritten. A failure inside one database is printed and the
run continues with the next database; only failing to connect or to list the
databases stops the run.`,
		Example: `  modelgen generate --driver mysql --dsn "root:secret@tcp(127.0.0.1:3306)/"
  modelgen generate --exclude information_schema --exclude mysql --exclude performance_schema --exclude sys
  modelgen generate --driver sqlite --dsn ./app.db --output app/Models --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, dryRun)
		},
	}

	cmd.Flags().String("driver", "", "Database driver (mysql, postgres, mssql, snowflake, sqlite, oracle)")
	cmd.Flags().String("dsn", "", "Server connection string")
	cmd.Flags().String("schema", "", "Schema to read tables from (default depends on driver)")
	cmd.Flags().String("output", "", "Output directory (default Models)")
	cmd.Flags().String("namespace", "", `Namespace prefix; the database name is appended (default App\Models)`)
	cmd.Flags().String("extension", "", "Model file extension (default php)")
	cmd.Flags().String("template", "", "Model template file replacing the built-in one")
	cmd.Flags().StringSlice("include", nil, "Only process databases matching these glob patterns")
	cmd.Flags().StringSlice("exclude", nil, "Skip databases matching these glob patterns")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Render models without writing files")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *rootOptions, dryRun bool) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging, cmd.ErrOrStderr())

	base, err := cfg.ConnectionConfig()
	if err != nil {
		return err
	}

	gen, err := generator.New(generatorOptions(cfg, dryRun), logger)
	if err != nil {
		return err
	}

	registry := newRegistry()
	defer registry.CloseAll()

	runner := pipeline.NewRunner(registry, gen, pipeline.Options{
		Source:  base,
		Include: cfg.Databases.Include,
		Exclude: cfg.Databases.Exclude,
	}, cmd.OutOrStdout(), logger)

	report, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	logger.Info("generation finished",
		"databases", len(report.Databases),
		"files", report.FileCount(),
		"failed", len(report.Failed()),
		"dry_run", dryRun,
	)
	return nil
}

func generatorOptions(cfg *config.Config, dryRun bool) generator.Options {
	return generator.Options{
		Dir:          cfg.Output.Dir,
		Namespace:    cfg.Output.Namespace,
		BaseClass:    cfg.Output.BaseClass,
		Extension:    cfg.Output.Extension,
		Author:       cfg.Output.Author,
		TemplatePath: cfg.Output.Template,
		DryRun:       dryRun,
	}
}
