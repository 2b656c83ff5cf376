package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootOptions holds the persistent flag values and the viper instance the
// command tree resolves configuration through.
type rootOptions struct {
	cfgFile string
	v       *viper.Viper
}

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd(version, commit, date string) *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "modelgen",
		Short: "Generate model classes for every table of every database on a server",
		Long: `modelgen connects to a database server, lists every database it can see, and
writes one model class per table: table name, primary key and fillable columns.

Databases are processed one at a time. A failure inside one database is reported
and the run moves on to the next.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./modelgen.yaml or $HOME/.modelgen/modelgen.yaml)")
	cmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().String("log-format", "", "log format: text, json, auto")

	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newDBCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}

// initConfig points viper at the config file and the MODELGEN_ environment.
// A missing config file is only an error when --config names one.
func (o *rootOptions) initConfig() error {
	v := o.v
	if o.cfgFile != "" {
		v.SetConfigFile(o.cfgFile)
	} else {
		v.SetConfigName("modelgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.modelgen")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if o.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
		// No config file found; defaults and overrides still apply.
	}
	return nil
}
