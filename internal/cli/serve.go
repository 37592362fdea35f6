package cli

import (
	"github.com/spf13/cobra"

	"github.com/bannerlord/bannerlord/internal/server"
	"github.com/bannerlord/bannerlord/pkg/config"
)

// newServeCmd creates the serve command, which exposes the banner
// pipeline over HTTP. Artifacts are written to the configured output
// directory and served back under /outputs/.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve banner creation over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			runner, err := buildRunner(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer runner.Close()

			printInfo("Serving on %s", cfg.Server.Addr)
			printDetail("POST /api/v1/banners to create a banner")

			return server.New(cfg.Server.Addr, cfg.Output.Dir, runner, logger).Start(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: config server.addr or :8080)")

	return cmd
}
