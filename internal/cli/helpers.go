package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/headline-goat/clip-goat/internal/experiment"
	"github.com/headline-goat/clip-goat/internal/notify"
	"github.com/headline-goat/clip-goat/internal/store"
)

// withStore opens the database, executes the function, and handles cleanup.
func (a *app) withStore(fn func(*store.SQLiteStore) error) error {
	s, err := store.Open(a.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer s.Close()

	return fn(s)
}

// withEngine is withStore plus a loaded engine. Webhook deliveries started
// by fn are awaited before the database closes.
func (a *app) withEngine(ctx context.Context, fn func(*experiment.Engine, *store.SQLiteStore) error) error {
	return a.withStore(func(s *store.SQLiteStore) error {
		notifier, wait := a.notifier()
		defer wait()

		opts := append([]experiment.Option{
			experiment.WithLogger(a.logger),
			experiment.WithContentStore(s),
			experiment.WithNotifier(notifier),
		}, a.cfg.Engine.Options()...)

		e, err := experiment.New(ctx, s, opts...)
		if err != nil {
			return err
		}
		return fn(e, s)
	})
}

func (a *app) notifier() (experiment.Notifier, func()) {
	sinks := notify.Multi{notify.NewLogNotifier(a.logger)}
	if a.cfg.Notify.WebhookURL == "" {
		return sinks, func() {}
	}
	webhook := notify.NewWebhookNotifier(a.cfg.Notify.WebhookURL, a.cfg.Notify.Timeout, a.logger)
	return append(sinks, webhook), webhook.Wait
}

// tokenFilePath keeps the dashboard token next to the database.
func (a *app) tokenFilePath() string {
	return filepath.Join(filepath.Dir(a.dbPath), ".cg-token")
}

// findExperiment resolves ref as an experiment id, falling back to a unique
// name match.
func findExperiment(e *experiment.Engine, ref string) (*experiment.Experiment, error) {
	if exp, ok := e.Get(ref); ok {
		return exp, nil
	}

	var matches []*experiment.Experiment
	for _, exp := range e.List() {
		if exp.Name == ref {
			matches = append(matches, exp)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("experiment '%s' not found", ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%d experiments are named '%s'; use the id instead", len(matches), ref)
	}
}

// findVariant resolves ref as a variant id, then a variant name, then a
// zero-based index.
func findVariant(exp *experiment.Experiment, ref string) (*experiment.Variant, error) {
	if v, ok := exp.Variant(ref); ok {
		return v, nil
	}
	if v, ok := exp.VariantByName(ref); ok {
		return v, nil
	}
	if idx, err := strconv.Atoi(ref); err == nil && idx >= 0 && idx < len(exp.Variants) {
		return &exp.Variants[idx], nil
	}
	return nil, fmt.Errorf("variant '%s' not found in '%s'", ref, exp.Name)
}

// parseVariants splits a comma-separated list, trimming blanks.
func parseVariants(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseSplit reads "50,30,20" into percentages. An empty string means nil.
func parseSplit(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []float64
	for _, part := range strings.Split(s, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid traffic share %q: %w", part, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// variantLabel names the i-th manual variant A, B, ... Z, V27, V28 ...
func variantLabel(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("V%d", i+1)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%d,%03d,%03d", n/1000000, (n/1000)%1000, n%1000)
}
