package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faucetdb/modelgen/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage modelgen configuration",
		Long:  "Initialize a default configuration file or display the current effective configuration.",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd(opts))

	return cmd
}

// ---------- config init ----------

func newConfigInitCmd() *cobra.Command {
	var (
		force bool
		path  string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default modelgen.yaml configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteDefault(path, force); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %s\n", path)
			fmt.Fprintln(out, "Edit source.dsn to point at your server, then run 'modelgen generate'.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config file")
	cmd.Flags().StringVar(&path, "path", "modelgen.yaml", "Where to write the file")

	return cmd
}

// ---------- config show ----------

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if file := opts.v.ConfigFileUsed(); file != "" {
				fmt.Fprintf(out, "# Config file: %s\n", file)
			} else {
				fmt.Fprintln(out, "# Config file: (none found, using defaults)")
			}

			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
}
