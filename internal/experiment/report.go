package experiment

import (
	"fmt"
	"math"
	"time"

	"github.com/headline-goat/clip-goat/internal/stats"
)

// ResultSet is a read-only snapshot of an experiment with its analysis.
type ResultSet struct {
	Experiment *Experiment     `json:"experiment"`
	Analysis   Analysis        `json:"analysis"`
	Variants   []RankedVariant `json:"variants"`
}

type RankedVariant struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Rank    int            `json:"rank"` // 1 = highest engagement
	Results VariantResults `json:"results"`
}

type Report struct {
	ExperimentID     string          `json:"experiment_id"`
	TestName         string          `json:"test_name"`
	Status           Status          `json:"status"`
	Duration         string          `json:"duration"`
	TotalImpressions int             `json:"total_impressions"`
	TotalViews       int             `json:"total_views"`
	TotalEngagements int             `json:"total_engagements"`
	Winner           Variant         `json:"winner"`
	Confidence       float64         `json:"confidence"`
	PercentDiff      float64         `json:"percent_diff"`
	Recommendation   string          `json:"recommendation"`
	VariantDetails   []VariantDetail `json:"variant_details"`
}

type VariantDetail struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Rank    int            `json:"rank"`
	Metrics VariantResults `json:"metrics"`
	// Improvement is the engagement lift over the first variant, in percent,
	// rounded to one decimal.
	Improvement float64 `json:"improvement"`
	// EngagementLow and EngagementHigh bound the engagement rate (percent)
	// with a 95% Wilson interval.
	EngagementLow  float64 `json:"engagement_low"`
	EngagementHigh float64 `json:"engagement_high"`
}

// Results returns the analysis snapshot for id, or false when it does not exist.
func (e *Engine) Results(id string) (*ResultSet, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	exp := e.find(id)
	if exp == nil {
		return nil, false
	}
	return e.results(exp), true
}

func (e *Engine) results(exp *Experiment) *ResultSet {
	snapshot := exp.Clone()
	ranks := make([]int, len(snapshot.Variants))
	for pos, idx := range Rank(snapshot) {
		ranks[idx] = pos + 1
	}

	rs := &ResultSet{
		Experiment: snapshot,
		Analysis:   Analyze(snapshot, e.scorer, e.threshold),
		Variants:   make([]RankedVariant, len(snapshot.Variants)),
	}
	for i, v := range snapshot.Variants {
		rs.Variants[i] = RankedVariant{
			ID:      v.ID,
			Name:    v.Name,
			Rank:    ranks[i],
			Results: v.Results,
		}
	}
	return rs
}

// Report summarizes an experiment for display, or returns false when id does
// not exist.
func (e *Engine) Report(id string) (*Report, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	exp := e.find(id)
	if exp == nil {
		return nil, false
	}
	rs := e.results(exp)

	report := &Report{
		ExperimentID:   exp.ID,
		TestName:       exp.Name,
		Status:         exp.Status,
		Duration:       Duration(exp.StartDate, exp.EndDate, e.now()),
		Winner:         rs.Analysis.Winner,
		Confidence:     rs.Analysis.Confidence,
		PercentDiff:    rs.Analysis.PercentDiff,
		Recommendation: Recommendation(rs.Analysis),
		VariantDetails: make([]VariantDetail, len(rs.Variants)),
	}

	baseline := rs.Variants[0].Results
	for i, v := range rs.Variants {
		r := v.Results
		report.TotalImpressions += r.Impressions
		report.TotalViews += r.Views
		report.TotalEngagements += r.Engagements()

		low, high := stats.WilsonInterval(r.Engagements(), r.Views, 0.95)
		report.VariantDetails[i] = VariantDetail{
			ID:             v.ID,
			Name:           v.Name,
			Rank:           v.Rank,
			Metrics:        r,
			Improvement:    Improvement(r, baseline),
			EngagementLow:  low * 100,
			EngagementHigh: high * 100,
		}
	}
	return report, true
}

// Duration renders the elapsed whole hours between start and end (or now),
// switching to whole days past 24 hours.
func Duration(start time.Time, end *time.Time, now time.Time) string {
	stop := now
	if end != nil {
		stop = *end
	}
	hours := int(math.Floor(stop.Sub(start).Hours()))
	if hours > 24 {
		return fmt.Sprintf("%d days", hours/24)
	}
	return fmt.Sprintf("%d hours", hours)
}

// Improvement is current's engagement lift over baseline in percent, rounded
// to one decimal. A zero baseline yields 0.
func Improvement(current, baseline VariantResults) float64 {
	if baseline.Engagement == 0 {
		return 0
	}
	lift := (current.Engagement - baseline.Engagement) / baseline.Engagement * 100
	return math.Round(lift*10) / 10
}

// Recommendation words the analysis for a human reader.
func Recommendation(a Analysis) string {
	switch {
	case a.Confidence >= 95 && math.IsInf(a.PercentDiff, 1):
		return fmt.Sprintf("Strongly recommend %q: it is the only variant with any engagement so far.", a.Winner.Name)
	case a.Confidence >= 95:
		return fmt.Sprintf("Strongly recommend %q: its engagement is %.1f%% higher than the alternatives with significant confidence.",
			a.Winner.Name, a.PercentDiff)
	case a.Confidence >= 80:
		return fmt.Sprintf("%q leans ahead, but more data is needed to confirm it.", a.Winner.Name)
	default:
		return "No clear difference yet; keep collecting data."
	}
}
