package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scubot/tagbot/internal/server"
)

func newServeCmd(o *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tag bot over HTTP",
		Long: `Serve the tag bot over HTTP until interrupted.

Endpoints:
  POST /dispatch   {"user_id": "...", "user_name": "...", "message": "..."}
  GET  /routes     registered routes in match order
  GET  /healthz    liveness
  GET  <metrics>   Prometheus metrics (server.metrics_path, default /metrics)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a, err := o.openApp()
			if err != nil {
				return o.appError(out, err)
			}
			defer a.Close()

			if !cmd.Flags().Changed("addr") {
				addr = o.cfg.Addr()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(a.bot, server.Options{
				Addr:        addr,
				MetricsPath: o.cfg.MetricsPath(),
				Metrics:     a.collector.Handler(),
				Logger:      o.logger,
			})
			if err := srv.ListenAndServe(ctx); err != nil {
				return o.handleError(out, ErrServerFailed, err, "")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr in config)")
	return cmd
}
