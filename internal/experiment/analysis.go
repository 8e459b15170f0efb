package experiment

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/headline-goat/clip-goat/internal/stats"
)

// Scorer turns the two best variants into a 0-100 confidence that best
// really outperforms runnerUp.
type Scorer interface {
	Confidence(best, runnerUp VariantResults, percentDiff float64) float64
}

// LinearScorer is the original heuristic: 50 + 2 points per percent of
// relative engagement lead, capped at 95. It ignores sample size and variance.
// A zero runner-up engagement makes percentDiff +Inf (confidence 95) or NaN
// (confidence NaN, never a winner); both are passed through unchanged.
type LinearScorer struct{}

func (LinearScorer) Confidence(_, _ VariantResults, percentDiff float64) float64 {
	return math.Min(95, 50+percentDiff*2)
}

// ZTestScorer runs a two-proportion z-test on engagements per view.
type ZTestScorer struct{}

func (ZTestScorer) Confidence(best, runnerUp VariantResults, _ float64) float64 {
	return stats.SignificanceTest(best.Engagements(), best.Views, runnerUp.Engagements(), runnerUp.Views) * 100
}

// ScorerByName maps a configuration value onto a Scorer.
func ScorerByName(name string) (Scorer, bool) {
	switch name {
	case "", "linear":
		return LinearScorer{}, true
	case "ztest":
		return ZTestScorer{}, true
	default:
		return nil, false
	}
}

// Analysis compares the two highest-engagement variants.
type Analysis struct {
	Winner      Variant `json:"winner"`
	RunnerUp    Variant `json:"runner_up"`
	Difference  float64 `json:"difference"`
	PercentDiff float64 `json:"percent_diff"`
	Confidence  float64 `json:"confidence"`
	HasWinner   bool    `json:"has_winner"`
}

// Rank orders variant indexes by engagement, highest first. Ties keep list order.
func Rank(exp *Experiment) []int {
	order := make([]int, len(exp.Variants))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return exp.Variants[order[a]].Results.Engagement > exp.Variants[order[b]].Results.Engagement
	})
	return order
}

// Analyze runs the winner computation without the sample-size guard, so it
// can be shown as progress at any time.
func Analyze(exp *Experiment, scorer Scorer, threshold float64) Analysis {
	order := Rank(exp)
	best := exp.Variants[order[0]]
	second := exp.Variants[order[1]]

	difference := best.Results.Engagement - second.Results.Engagement
	percentDiff := difference / second.Results.Engagement * 100
	confidence := scorer.Confidence(best.Results, second.Results, percentDiff)

	return Analysis{
		Winner:      best.clone(),
		RunnerUp:    second.clone(),
		Difference:  difference,
		PercentDiff: percentDiff,
		Confidence:  confidence,
		HasWinner:   confidence >= threshold,
	}
}

// checkForWinner completes exp when every variant has enough views and the
// scorer is confident enough. Caller holds e.mu.
func (e *Engine) checkForWinner(ctx context.Context, exp *Experiment) {
	if exp.Status != StatusActive {
		return
	}

	for _, v := range exp.Variants {
		if v.Results.Views < e.minSampleSize {
			e.logger.Debug("not enough data for a winner yet",
				zap.String("experiment", exp.ID),
				zap.Int("min_views_per_variant", e.minSampleSize))
			return
		}
	}

	analysis := Analyze(exp, e.scorer, e.threshold)
	if !analysis.HasWinner {
		return
	}

	end := e.now()
	winner := analysis.Winner
	confidence := analysis.Confidence
	exp.Winner = &winner
	exp.Confidence = &confidence
	exp.Status = StatusCompleted
	exp.EndDate = &end
	delete(e.active, exp.ID)

	e.logger.Info("winner found",
		zap.String("experiment", exp.ID),
		zap.String("winner", winner.Name),
		zap.Float64("confidence", confidence))

	e.persistQuietly(ctx, "winner")
	e.notifier.Notify(ctx, WinnerEvent{
		ExperimentID:   exp.ID,
		ExperimentName: exp.Name,
		Winner:         winner.clone(),
		Confidence:     confidence,
		At:             end,
	})
}
