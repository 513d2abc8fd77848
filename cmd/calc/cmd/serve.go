package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pengelbrecht/calc/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the evaluation server",
	Long: `Run an HTTP server that evaluates operations.

Endpoints:
  GET  /ws       websocket; send {"id","op","a","b"}, receive {"id","result"} or {"id","error"}
  POST /eval     the same request and response as plain JSON
  GET  /metrics  Prometheus metrics
  GET  /healthz  liveness

The listen address and per-connection rate limit come from the server
section of the config file; --addr overrides the address.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, 127.0.0.1:8790)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(c *cobra.Command, args []string) error {
	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.GetAddr()
	}

	srv := server.New(addr,
		server.WithLogger(logger),
		server.WithRateLimit(cfg.Server.GetRateLimit(), cfg.Server.GetBurst()),
	)

	ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
