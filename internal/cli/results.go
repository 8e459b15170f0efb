package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/headline-goat/clip-goat/internal/experiment"
	"github.com/headline-goat/clip-goat/internal/server"
	"github.com/headline-goat/clip-goat/internal/store"
)

func newResultsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "results <id|name>",
		Short: "Show detailed results for an experiment",
		Long:  `Show per-variant counters, engagement rates with 95% intervals, and the current recommendation.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd.Context(), func(e *experiment.Engine, _ *store.SQLiteStore) error {
				exp, err := findExperiment(e, args[0])
				if err != nil {
					return err
				}
				report, _ := e.Report(exp.ID)

				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(server.NewReportResponse(report))
				}
				return printReport(cmd.OutOrStdout(), exp, report)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printReport(out io.Writer, exp *experiment.Experiment, report *experiment.Report) error {
	fmt.Fprintf(out, "EXPERIMENT: %s (%s)\n", report.TestName, report.ExperimentID)
	fmt.Fprintf(out, "STATUS: %s\n", report.Status)
	fmt.Fprintf(out, "STARTED: %s (%s)\n", exp.StartDate.Format("2006-01-02"), report.Duration)
	fmt.Fprintf(out, "TOTALS: %s impressions, %s views, %s engagements\n",
		formatNumber(report.TotalImpressions), formatNumber(report.TotalViews), formatNumber(report.TotalEngagements))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tVARIANT\tIMPRESSIONS\tVIEWS\tENGAGEMENTS\tRATE\t95% CI\tVS FIRST\t")
	for _, d := range report.VariantDetails {
		indicator := ""
		if exp.Winner != nil && exp.Winner.ID == d.ID {
			indicator = "← WINNER"
		} else if d.Rank == 1 && report.TotalEngagements > 0 {
			indicator = "← LEADING"
		}

		ci := fmt.Sprintf("[%.1f%%, %.1f%%]", d.EngagementLow, d.EngagementHigh)
		if d.Metrics.Views == 0 {
			ci = "N/A"
		}

		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%s\t%s\t%+.1f%%\t%s\n",
			d.Rank,
			truncate(d.Name, 16),
			d.Metrics.Impressions,
			d.Metrics.Views,
			d.Metrics.Engagements(),
			formatPercent(d.Metrics.Engagement),
			ci,
			d.Improvement,
			indicator,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	if !math.IsNaN(report.Confidence) {
		fmt.Fprintf(out, "Confidence: %.1f%%\n", report.Confidence)
	}
	fmt.Fprintln(out, report.Recommendation)
	return nil
}

// formatPercent renders a value that is already a percentage.
func formatPercent(p float64) string {
	if p == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", p)
}
