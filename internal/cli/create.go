package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/headline-goat/clip-goat/internal/experiment"
	"github.com/headline-goat/clip-goat/internal/store"
)

func newCreateCmd(a *app) *cobra.Command {
	var (
		variants    string
		variantType string
		kind        string
		base        string
		split       string
		contentID   string
		description string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new experiment",
		Long: `Create a new experiment from explicit variants or from a generator.

With --variants each comma-separated value becomes a variant labelled A, B, C...
With --kind a generator builds the variants from --base (not needed for time).
With neither, you are asked interactively.

Examples:
  cg create hook --variants "Ship Faster,Build Better"
  cg create hook --variants "A,B,C" --split "50,25,25"
  cg create hook --kind title --base "I tried coding for 30 days"
  cg create slots --kind time`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shares, err := parseSplit(split)
			if err != nil {
				return err
			}

			defs, err := variantDefinitions(variants, variantType, kind, base)
			if err != nil {
				return err
			}

			return a.withEngine(cmd.Context(), func(e *experiment.Engine, _ *store.SQLiteStore) error {
				exp, err := e.Create(cmd.Context(), experiment.Definition{
					Name:         args[0],
					Description:  description,
					ContentID:    contentID,
					Variants:     defs,
					TrafficSplit: shares,
				})
				if err != nil {
					return fmt.Errorf("failed to create experiment: %w", err)
				}

				printCreated(cmd.OutOrStdout(), exp)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&variants, "variants", "v", "", "comma-separated variant values")
	cmd.Flags().StringVarP(&variantType, "type", "t", string(experiment.TypeTitle), "what --variants vary: title, thumbnail, hashtags or time")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "generate variants of this kind instead of --variants")
	cmd.Flags().StringVar(&base, "base", "", "baseline value the generator starts from")
	cmd.Flags().StringVar(&split, "split", "", "comma-separated traffic percentages (default even)")
	cmd.Flags().StringVar(&contentID, "content", "", "id of the content item under test")
	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	cmd.MarkFlagsMutuallyExclusive("variants", "kind")

	return cmd
}

func variantDefinitions(variants, variantType, kind, base string) ([]experiment.VariantDefinition, error) {
	if variants != "" {
		vt, err := experiment.ParseVariantType(variantType)
		if err != nil {
			return nil, err
		}
		values := parseVariants(variants)
		if len(values) < 2 {
			return nil, fmt.Errorf("need at least 2 variants. Example: --variants \"A,B\"")
		}
		defs := make([]experiment.VariantDefinition, len(values))
		for i, v := range values {
			defs[i] = experiment.VariantDefinition{Name: variantLabel(i), Type: vt, Value: v}
		}
		return defs, nil
	}

	var vt experiment.VariantType
	var err error
	if kind != "" {
		vt, err = experiment.ParseVariantType(kind)
	} else {
		vt, err = promptKind()
	}
	if err != nil {
		return nil, err
	}

	if vt != experiment.TypeTime && base == "" {
		if base, err = promptBaseline(vt); err != nil {
			return nil, err
		}
	}

	switch vt {
	case experiment.TypeTitle:
		return experiment.TitleVariants(base)
	case experiment.TypeThumbnail:
		return experiment.ThumbnailVariants(base)
	case experiment.TypeHashtags:
		return experiment.HashtagVariants(base)
	default:
		return experiment.PostingTimeVariants(), nil
	}
}

func printCreated(out io.Writer, exp *experiment.Experiment) {
	fmt.Fprintf(out, "Created experiment '%s' (%s) with %d variants:\n", exp.Name, exp.ID, len(exp.Variants))
	for i, v := range exp.Variants {
		var share float64
		if i < len(exp.TrafficSplit) {
			share = exp.TrafficSplit[i]
		}
		fmt.Fprintf(out, "  %d: %-14s %5.1f%%  %s\n", i, v.Name, share, v.Value)
	}
}
