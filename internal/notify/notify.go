// Package notify delivers winner announcements produced by the experiment
// engine to logs and webhooks.
package notify

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/headline-goat/clip-goat/internal/experiment"
)

// FormatWinner renders ev as a one-line human message.
func FormatWinner(ev experiment.WinnerEvent) string {
	confidence := "n/a"
	if !math.IsNaN(ev.Confidence) && !math.IsInf(ev.Confidence, 0) {
		confidence = fmt.Sprintf("%.1f%%", ev.Confidence)
	}
	return fmt.Sprintf("Experiment %q finished: %q wins (%s confidence, engagement %.1f%%)",
		ev.ExperimentName, ev.Winner.Name, confidence, ev.Winner.Results.Engagement)
}

// LogNotifier writes winner events to a zap logger.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, ev experiment.WinnerEvent) {
	n.logger.Info(FormatWinner(ev),
		zap.String("experiment", ev.ExperimentID),
		zap.String("winner_id", ev.Winner.ID),
		zap.Float64("confidence", ev.Confidence),
		zap.Time("at", ev.At))
}

// Multi fans an event out to every notifier in order.
type Multi []experiment.Notifier

func (m Multi) Notify(ctx context.Context, ev experiment.WinnerEvent) {
	for _, n := range m {
		n.Notify(ctx, ev)
	}
}

var (
	_ experiment.Notifier = (*LogNotifier)(nil)
	_ experiment.Notifier = (*WebhookNotifier)(nil)
	_ experiment.Notifier = Multi(nil)
)
