package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qreuse/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands
// registered. The configuration file is loaded before any subcommand runs,
// and the logger is attached to the command context.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "qreuse reduces the qubit count of static quantum circuits",
		Long:          `qreuse analyses static quantum circuits for qubit reuse: it reports how few physical qubits a circuit can run on once measured qubits are reset and reassigned, and rewrites the circuit to use them.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/qreuse/config.toml)")

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.reduceCommand())
	root.AddCommand(c.crossCheckCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Execute runs the command tree with ctx.
func (c *CLI) Execute(ctx context.Context) error {
	return c.RootCommand().ExecuteContext(ctx)
}
