package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/headline-goat/clip-goat/internal/experiment"
	"github.com/headline-goat/clip-goat/internal/store"
)

func newAutoCmd(a *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "auto <content-id>",
		Short: "Create an experiment from a stored content item",
		Long: `Generate variants from a content item's title, thumbnail or hashtags
(or the fixed posting-time slots) and start an experiment with an even split.

Without --kind you pick the kind interactively.

Examples:
  cg content add --title "My cat opens doors"
  cg auto 3f1c... --kind title`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var vt experiment.VariantType
			var err error
			if kind != "" {
				vt, err = experiment.ParseVariantType(kind)
			} else {
				vt, err = promptKind()
			}
			if err != nil {
				return err
			}

			return a.withEngine(cmd.Context(), func(e *experiment.Engine, _ *store.SQLiteStore) error {
				exp, err := e.AutoCreate(cmd.Context(), args[0], vt)
				if err != nil {
					return fmt.Errorf("failed to create experiment: %w", err)
				}
				printCreated(cmd.OutOrStdout(), exp)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "title, thumbnail, hashtags or time")
	return cmd
}
