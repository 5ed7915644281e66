package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qreuse/internal/server"
	"github.com/matzehuels/qreuse/pkg/observability"
	"github.com/matzehuels/qreuse/pkg/observability/promhooks"
	"github.com/matzehuels/qreuse/pkg/pipeline"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes analyze, reduce, crosscheck and graph over HTTP, with
Prometheus metrics on /metrics. The address defaults to [server] addr in
the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			hooks := promhooks.New(prometheus.DefaultRegisterer)
			observability.SetPipelineHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetHTTPHooks(hooks)
			defer observability.Reset()

			a := c.Config.Analysis
			srv := server.New(server.Config{
				Addr:   addr,
				Runner: runner,
				Logger: c.Logger,
				Defaults: pipeline.Options{
					Method:    a.Method,
					Heuristic: a.Heuristic,
					MaxSteps:  a.MaxSteps,
					Timeout:   a.Timeout.Duration,
				},
				Ordered: a.Ordered,
			})
			printInfo(cmd.OutOrStdout(), "Serving on %s", StyleValue.Render(addr))
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	return cmd
}
