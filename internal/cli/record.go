package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/headline-goat/clip-goat/internal/experiment"
	"github.com/headline-goat/clip-goat/internal/store"
)

func newRecordCmd(a *app) *cobra.Command {
	var (
		variantRef string
		event      string
		amount     int
		repeat     int
	)

	cmd := &cobra.Command{
		Use:   "record <experiment>",
		Short: "Record an impression, view or engagement event",
		Long: `Record events against a variant. Useful for backfilling counts
collected elsewhere and for trying the winner logic by hand.

Events: impression, view, like, share, comment, click.
--amount applies to engagement events; --repeat sends the event N times.

Examples:
  cg record hook --variant A --event view --repeat 150
  cg record hook --variant A --event like --amount 12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if repeat < 1 {
				return fmt.Errorf("--repeat must be at least 1")
			}
			if !validEvent(event) {
				return fmt.Errorf("unknown event %q: use impression, view, like, share, comment or click", event)
			}
			if amount < 1 {
				return fmt.Errorf("--amount must be at least 1")
			}

			return a.withEngine(cmd.Context(), func(e *experiment.Engine, _ *store.SQLiteStore) error {
				ctx := cmd.Context()
				exp, err := findExperiment(e, args[0])
				if err != nil {
					return err
				}
				v, err := findVariant(exp, variantRef)
				if err != nil {
					return err
				}

				record := func() experiment.Outcome {
					switch event {
					case "impression":
						return e.RecordImpression(ctx, exp.ID, v.ID)
					case "view":
						return e.RecordView(ctx, exp.ID, v.ID)
					default:
						return e.RecordEngagement(ctx, exp.ID, v.ID, experiment.EventKind(event), amount)
					}
				}

				recorded := 0
				var last experiment.Outcome
				for range repeat {
					last = record()
					if !last.Recorded() {
						break
					}
					recorded++
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Recorded %d × %s for '%s' in '%s'\n", recorded, event, v.Name, exp.Name)
				if !last.Recorded() {
					fmt.Fprintf(out, "Stopped early: %s\n", last)
				}

				if after, ok := e.Get(exp.ID); ok && after.Winner != nil && exp.Winner == nil {
					fmt.Fprintf(out, "🏆 Winner: '%s' (%.1f%% confidence). Experiment completed.\n",
						after.Winner.Name, *after.Confidence)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&variantRef, "variant", "", "variant id, name or index (required)")
	cmd.Flags().StringVarP(&event, "event", "e", "view", "impression, view, like, share, comment or click")
	cmd.Flags().IntVarP(&amount, "amount", "n", 1, "engagement amount per event")
	cmd.Flags().IntVar(&repeat, "repeat", 1, "number of times to record the event")
	cmd.MarkFlagRequired("variant")

	return cmd
}

func validEvent(event string) bool {
	switch event {
	case "impression", "view",
		string(experiment.EventLike), string(experiment.EventShare),
		string(experiment.EventComment), string(experiment.EventClick):
		return true
	}
	return false
}
