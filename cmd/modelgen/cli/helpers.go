package cli

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/faucetdb/modelgen/internal/config"
	"github.com/faucetdb/modelgen/internal/connector"
	"github.com/faucetdb/modelgen/internal/connector/mssql"
	"github.com/faucetdb/modelgen/internal/connector/mysql"
	"github.com/faucetdb/modelgen/internal/connector/oracle"
	"github.com/faucetdb/modelgen/internal/connector/postgres"
	"github.com/faucetdb/modelgen/internal/connector/snowflake"
	"github.com/faucetdb/modelgen/internal/connector/sqlite"
)

const envPrefix = "MODELGEN"

var envKeyReplacer = strings.NewReplacer(".", "_")

// flagKeys maps command-line flags to the config keys they override.
var flagKeys = map[string]string{
	"driver":     "source.driver",
	"dsn":        "source.dsn",
	"schema":     "source.schema",
	"output":     "output.dir",
	"namespace":  "output.namespace",
	"extension":  "output.extension",
	"template":   "output.template",
	"include":    "databases.include",
	"exclude":    "databases.exclude",
	"log-level":  "logging.level",
	"log-format": "logging.format",
}

// newRegistry creates a connector registry with all supported database drivers registered.
func newRegistry() *connector.Registry {
	registry := connector.NewRegistry()
	registry.RegisterDriver("postgres", postgres.New)
	registry.RegisterDriver("mysql", mysql.New)
	registry.RegisterDriver("mssql", mssql.New)
	registry.RegisterDriver("snowflake", snowflake.New)
	registry.RegisterDriver("sqlite", sqlite.New)
	registry.RegisterDriver("oracle", oracle.New)
	return registry
}

// loadConfig resolves the effective configuration for cmd: defaults, then
// the config file (with ${VAR} expansion), then MODELGEN_* environment
// variables, then flags set on the command line.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := o.initConfig(); err != nil {
		return nil, err
	}

	cfg := config.Default()
	if path := o.v.ConfigFileUsed(); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	changed := map[string]bool{}
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		o.v.BindPFlag(key, f)
		if f.Changed {
			changed[key] = true
		}
	})

	for _, key := range config.Keys {
		if !changed[key] && !envSet(key) {
			continue
		}
		if err := cfg.Set(key, o.value(key)); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *rootOptions) value(key string) string {
	if strings.HasPrefix(key, "databases.") {
		return strings.Join(o.v.GetStringSlice(key), ",")
	}
	return o.v.GetString(key)
}

func envSet(key string) bool {
	_, ok := os.LookupEnv(envPrefix + "_" + strings.ToUpper(envKeyReplacer.Replace(key)))
	return ok
}

// newLogger builds the run's logger. Every record carries a "run" id.
func newLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	format := cfg.Format
	if format == "auto" {
		format = "json"
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = "text"
		}
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("run", uuid.NewString())
}
