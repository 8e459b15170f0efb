package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newTokenCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Show dashboard URL with access token",
		Long: `Show the dashboard URL with your access token.

Use this when you've scrolled past the startup message or need to
share the dashboard link.

Example:
  cg token`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				port = int(a.cfg.HTTP.Port)
			}

			data, err := os.ReadFile(a.tokenFilePath())
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("no server running. Start with: cg serve")
			}
			if err != nil {
				return fmt.Errorf("failed to read token file: %w", err)
			}

			token := strings.TrimSpace(string(data))
			if token == "" {
				return fmt.Errorf("token file is empty. Restart the server with: cg serve")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Dashboard: http://localhost:%d/dashboard?token=%s\n", port, token)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Tip: Bookmark this URL or run 'cg token' anytime.")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "server port (default $CG_HTTP_PORT or 8080)")
	return cmd
}
