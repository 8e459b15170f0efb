package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/headline-goat/clip-goat/internal/experiment"
	"github.com/headline-goat/clip-goat/internal/store"
)

func newContentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Manage the content items experiments are generated from",
	}
	cmd.AddCommand(newContentAddCmd(a), newContentListCmd(a))
	return cmd
}

func newContentAddCmd(a *app) *cobra.Command {
	var c experiment.Content

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a content item",
		Example: `  cg content add --title "My cat opens doors" --hashtags "#cats #pets"
  cg content add --id vid-42 --title "Morning routine" --thumbnail https://cdn.example.com/42.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(c.Title) == "" {
				return fmt.Errorf("--title is required")
			}
			return a.withStore(func(s *store.SQLiteStore) error {
				created, err := s.CreateContent(cmd.Context(), c)
				if err != nil {
					return fmt.Errorf("failed to store content: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored content %s\n", created.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "Next: cg auto %s --kind title\n", created.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&c.ID, "id", "", "id to store the item under (default random)")
	cmd.Flags().StringVar(&c.Title, "title", "", "video title (required)")
	cmd.Flags().StringVar(&c.ThumbnailURL, "thumbnail", "", "thumbnail URL")
	cmd.Flags().StringVar(&c.Hashtags, "hashtags", "", "space-separated hashtags")
	return cmd
}

func newContentListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored content items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *store.SQLiteStore) error {
				items, err := s.ListContent(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list content: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No content yet. Add some with: cg content add --title \"...\"")
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE\tHASHTAGS\tADDED")
				for _, c := range items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						c.ID, truncate(c.Title, 40), truncate(c.Hashtags, 30), c.CreatedAt.Format("2006-01-02"))
				}
				return w.Flush()
			})
		},
	}
}
