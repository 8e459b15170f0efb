package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/headline-goat/clip-goat/internal/experiment"
	"github.com/headline-goat/clip-goat/internal/store"
)

func newExportCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <experiment>",
		Short: "Export per-variant counters",
		Long: `Export every variant's raw counters and derived rates in CSV or JSON format.

Examples:
  cg export hook --format csv > hook.csv
  cg export hook --format json > hook.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "json" {
				return fmt.Errorf("invalid format: must be 'csv' or 'json'")
			}

			return a.withEngine(cmd.Context(), func(e *experiment.Engine, _ *store.SQLiteStore) error {
				exp, err := findExperiment(e, args[0])
				if err != nil {
					return err
				}
				if format == "csv" {
					return exportCSV(cmd.OutOrStdout(), exp)
				}
				return exportJSON(cmd.OutOrStdout(), exp)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "output format (csv or json)")
	return cmd
}

var exportHeader = []string{
	"variant_id", "index", "name", "type", "value",
	"impressions", "views", "likes", "shares", "comments", "clicks",
	"ctr", "engagement", "conversion_rate",
}

func exportCSV(out io.Writer, exp *experiment.Experiment) error {
	w := csv.NewWriter(out)

	if err := w.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, v := range exp.Variants {
		r := v.Results
		row := []string{
			v.ID,
			strconv.Itoa(v.Index),
			v.Name,
			string(v.Type),
			v.Value,
			strconv.Itoa(r.Impressions),
			strconv.Itoa(r.Views),
			strconv.Itoa(r.Likes),
			strconv.Itoa(r.Shares),
			strconv.Itoa(r.Comments),
			strconv.Itoa(r.Clicks),
			strconv.FormatFloat(r.CTR, 'f', 4, 64),
			strconv.FormatFloat(r.Engagement, 'f', 4, 64),
			strconv.FormatFloat(r.ConversionRate, 'f', 4, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

type jsonExport struct {
	ExperimentID string               `json:"experiment_id"`
	Name         string               `json:"name"`
	Status       experiment.Status    `json:"status"`
	Variants     []experiment.Variant `json:"variants"`
}

func exportJSON(out io.Writer, exp *experiment.Experiment) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(jsonExport{
		ExperimentID: exp.ID,
		Name:         exp.Name,
		Status:       exp.Status,
		Variants:     exp.Variants,
	})
}
