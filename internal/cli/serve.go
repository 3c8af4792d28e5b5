package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/redline/pkg/api"
	"github.com/matzehuels/redline/pkg/observability"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the placement engine over HTTP",
		Long: `Serve the placement engine over HTTP.

Cache and batch storage backends come from the config file:

  [cache]
  backend = "redis"
  redis_addr = "localhost:6379"

  [store]
  backend = "mongo"
  mongo_uri = "mongodb://localhost:27017"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	hooks := observability.NewLogHooks(logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetAPIHooks(hooks)
	defer observability.Reset()

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := []api.Option{
		api.WithLogger(logger),
		api.WithDefaults(optionsFromConfig(cfg)),
	}
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if st != nil {
		defer st.Close()
		opts = append(opts, api.WithStore(st))
	}

	logger.Info("starting server",
		"cache", cfg.Cache.Backend,
		"store", cfg.Store.Backend)
	return api.New(runner, opts...).ListenAndServe(ctx, addr, cfg.Server.ReadTimeout.Duration, cfg.Server.WriteTimeout.Duration)
}
