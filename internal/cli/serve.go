package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/arceval/pkg/cache"
	"github.com/matzehuels/arceval/pkg/observability"
	"github.com/matzehuels/arceval/pkg/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the evaluation API over HTTP",
		Long: `Serve starts an HTTP server exposing POST /v1/evaluate, /v1/check and
/v1/export, plus /healthz and Prometheus metrics on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.cfg.Server
			if addr != "" {
				cfg.Addr = addr
			}

			prom := observability.NewPrometheus(prometheus.DefaultRegisterer)
			observability.SetPipelineHooks(prom)
			observability.SetCacheHooks(prom)
			observability.SetHTTPHooks(prom)
			defer observability.Reset()

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			printInfo("Serving arceval API")
			printKeyValue("address", "http://"+cfg.Addr)
			printKeyValue("cache", c.cacheBackend(noCache))
			printKeyValue("duplicates", c.cfg.Duplicates)
			return server.New(runner, cfg, server.WithLogger(c.Logger)).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, localhost:8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable result caching")

	return cmd
}

func (c *CLI) cacheBackend(noCache bool) string {
	if noCache {
		return cache.BackendNone
	}
	return c.cfg.Cache.Backend
}
