package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/headline-goat/clip-goat/internal/experiment"
	"github.com/headline-goat/clip-goat/internal/store"
)

func newAssignCmd(a *app) *cobra.Command {
	var impression bool

	cmd := &cobra.Command{
		Use:   "assign <experiment>",
		Short: "Draw a variant according to the traffic split",
		Long: `Draw the variant to show next. Completed experiments always return
their winner. With --impression the draw is also counted as an impression.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd.Context(), func(e *experiment.Engine, _ *store.SQLiteStore) error {
				exp, err := findExperiment(e, args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if exp.Winner != nil {
					fmt.Fprintf(out, "%s\t%s\t(winner)\n", exp.Winner.Name, exp.Winner.Value)
					return nil
				}
				if exp.Status != experiment.StatusActive {
					return fmt.Errorf("experiment '%s' is %s", exp.Name, exp.Status)
				}

				v := e.Select(exp)
				if impression {
					if outcome := e.RecordImpression(cmd.Context(), exp.ID, v.ID); !outcome.Recorded() {
						return fmt.Errorf("impression not recorded: %s", outcome)
					}
				}
				fmt.Fprintf(out, "%s\t%s\n", v.Name, v.Value)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&impression, "impression", false, "record an impression for the drawn variant")
	return cmd
}
