package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/headline-goat/clip-goat/internal/experiment"
	"github.com/headline-goat/clip-goat/internal/store"
)

func newListCmd(a *app) *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all experiments",
		Long:  `List experiments with their status and totals, oldest first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd.Context(), func(e *experiment.Engine, _ *store.SQLiteStore) error {
				list := e.List()
				if activeOnly {
					list = e.Active()
				}

				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "No experiments yet.")
					fmt.Fprintln(out)
					fmt.Fprintln(out, "Create one with:")
					fmt.Fprintln(out, "  cg create hook --variants \"Ship Faster,Build Better\"")
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tSTATUS\tVARIANTS\tVIEWS\tENGAGEMENTS\tWINNER\tSTARTED")

				for _, exp := range list {
					totalViews := 0
					totalEngagements := 0
					for _, v := range exp.Variants {
						totalViews += v.Results.Views
						totalEngagements += v.Results.Engagements()
					}

					winner := "-"
					if exp.Winner != nil {
						winner = exp.Winner.Name
					}

					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
						shortID(exp.ID),
						truncate(exp.Name, 32),
						strings.ToUpper(string(exp.Status)),
						len(exp.Variants),
						formatNumber(totalViews),
						formatNumber(totalEngagements),
						winner,
						exp.StartDate.Format("2006-01-02"),
					)
				}

				return w.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "only experiments still collecting data")
	return cmd
}
