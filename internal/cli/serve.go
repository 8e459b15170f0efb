package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/headline-goat/clip-goat/internal/experiment"
	"github.com/headline-goat/clip-goat/internal/server"
	"github.com/headline-goat/clip-goat/internal/store"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the clip-goat HTTP server.

The server provides:
  - JSON API for experiments, events and content
  - Dashboard for viewing results
  - Health check endpoint

Example:
  cg serve --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				port = int(a.cfg.HTTP.Port)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return a.withEngine(ctx, func(e *experiment.Engine, s *store.SQLiteStore) error {
				srv := server.New(e, s, a.logger, port, a.tokenFilePath())

				out := cmd.OutOrStdout()
				fmt.Fprintln(out)
				fmt.Fprintf(out, "clip-goat running on http://localhost:%d\n", port)
				fmt.Fprintf(out, "Dashboard: http://localhost:%d/dashboard?token=%s\n", port, srv.Token())
				fmt.Fprintf(out, "Database: %s\n", s.Path())
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Press Ctrl+C to stop")

				return srv.Start(ctx)
			})
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on (default $CG_HTTP_PORT or 8080)")
	return cmd
}

