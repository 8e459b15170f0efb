package experiment

import (
	"context"

	"go.uber.org/zap"
)

// Outcome tells a caller what a recording call did. Recording never fails;
// anything other than Recorded means the call was ignored.
type Outcome string

const (
	Recorded           Outcome = "recorded"
	ExperimentNotFound Outcome = "experiment_not_found"
	VariantNotFound    Outcome = "variant_not_found"
	Closed             Outcome = "closed"
	Invalid            Outcome = "invalid"
)

func (o Outcome) Recorded() bool { return o == Recorded }

type EventKind string

const (
	EventLike    EventKind = "like"
	EventShare   EventKind = "share"
	EventComment EventKind = "comment"
	EventClick   EventKind = "click"
)

// Recompute derives ctr, engagement and conversion rate from the raw
// counters. It never accumulates, so calling it twice changes nothing.
func Recompute(r *VariantResults) {
	r.CTR = 0
	r.ConversionRate = 0
	if r.Impressions > 0 {
		r.CTR = float64(r.Clicks) / float64(r.Impressions) * 100
		r.ConversionRate = float64(r.Views) / float64(r.Impressions) * 100
	}

	r.Engagement = 0
	if r.Views > 0 {
		r.Engagement = float64(r.Engagements()) / float64(r.Views) * 100
	}
}

// RecordImpression counts one impression. Derived metrics are left alone
// until the next view or engagement.
func (e *Engine) RecordImpression(ctx context.Context, experimentID, variantID string) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, v, outcome := e.lookup(experimentID, variantID, "impression")
	if outcome != Recorded {
		return outcome
	}

	v.Results.Impressions++
	e.persistQuietly(ctx, "impression")
	return Recorded
}

// RecordView counts one view and recomputes the variant's derived metrics.
func (e *Engine) RecordView(ctx context.Context, experimentID, variantID string) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	exp, v, outcome := e.lookup(experimentID, variantID, "view")
	if outcome != Recorded {
		return outcome
	}

	v.Results.Views++
	Recompute(&v.Results)
	e.persistQuietly(ctx, "view")

	if e.evaluateOnView {
		e.checkForWinner(ctx, exp)
	}
	return Recorded
}

// RecordEngagement adds amount to the counter for kind, recomputes derived
// metrics and re-evaluates the whole experiment for a winner. Unknown kinds
// are ignored; so are amounts below 1, which would break monotonic counters.
func (e *Engine) RecordEngagement(ctx context.Context, experimentID, variantID string, kind EventKind, amount int) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	exp, v, outcome := e.lookup(experimentID, variantID, string(kind))
	if outcome != Recorded {
		return outcome
	}
	if amount < 1 {
		e.logger.Warn("ignoring non-positive engagement amount",
			zap.String("experiment", experimentID), zap.Int("amount", amount))
		return Invalid
	}

	switch kind {
	case EventLike:
		v.Results.Likes += amount
	case EventShare:
		v.Results.Shares += amount
	case EventComment:
		v.Results.Comments += amount
	case EventClick:
		v.Results.Clicks += amount
	default:
		e.logger.Debug("ignoring unknown engagement kind", zap.String("kind", string(kind)))
		return Invalid
	}

	Recompute(&v.Results)
	e.persistQuietly(ctx, string(kind))

	e.checkForWinner(ctx, exp)
	return Recorded
}

func (e *Engine) lookup(experimentID, variantID, event string) (*Experiment, *Variant, Outcome) {
	exp, ok := e.active[experimentID]
	if !ok {
		if e.find(experimentID) != nil {
			e.logger.Debug("ignoring event for closed experiment",
				zap.String("experiment", experimentID), zap.String("event", event))
			return nil, nil, Closed
		}
		e.logger.Warn("ignoring event for unknown experiment",
			zap.String("experiment", experimentID), zap.String("event", event))
		return nil, nil, ExperimentNotFound
	}

	v, ok := exp.Variant(variantID)
	if !ok {
		e.logger.Warn("ignoring event for unknown variant",
			zap.String("experiment", experimentID),
			zap.String("variant", variantID),
			zap.String("event", event))
		return nil, nil, VariantNotFound
	}
	return exp, v, Recorded
}
