package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/headline-goat/clip-goat/internal/experiment"
	"github.com/headline-goat/clip-goat/internal/store"
)

func newStopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <experiment>",
		Short: "Stop an active experiment without declaring a winner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd.Context(), func(e *experiment.Engine, _ *store.SQLiteStore) error {
				exp, err := findExperiment(e, args[0])
				if err != nil {
					return err
				}
				if !e.Stop(cmd.Context(), exp.ID) {
					return fmt.Errorf("experiment '%s' is not active (current status: %s)", exp.Name, exp.Status)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stopped experiment '%s'. Its counters are now frozen.\n", exp.Name)
				return nil
			})
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <experiment>",
		Short: "Delete an experiment and its results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd.Context(), func(e *experiment.Engine, _ *store.SQLiteStore) error {
				id := args[0]
				name := id
				if exp, err := findExperiment(e, args[0]); err == nil {
					id, name = exp.ID, exp.Name
				}
				if err := e.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to delete experiment: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted experiment '%s'.\n", name)
				return nil
			})
		},
	}
}
