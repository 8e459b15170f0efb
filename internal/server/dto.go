package server

import (
	"math"
	"time"

	"github.com/headline-goat/clip-goat/internal/experiment"
)

// finite maps NaN and ±Inf to nil so they encode as JSON null.
func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

type AnalysisResponse struct {
	WinnerID     string   `json:"winner_id"`
	WinnerName   string   `json:"winner_name"`
	RunnerUpID   string   `json:"runner_up_id"`
	RunnerUpName string   `json:"runner_up_name"`
	Difference   *float64 `json:"difference"`
	PercentDiff  *float64 `json:"percent_diff"`
	Confidence   *float64 `json:"confidence"`
	HasWinner    bool     `json:"has_winner"`
}

type ResultsResponse struct {
	Experiment *experiment.Experiment     `json:"experiment"`
	Analysis   AnalysisResponse           `json:"analysis"`
	Variants   []experiment.RankedVariant `json:"variants"`
}

// NewResultsResponse converts a result set into its JSON shape.
func NewResultsResponse(rs *experiment.ResultSet) ResultsResponse {
	a := rs.Analysis
	return ResultsResponse{
		Experiment: rs.Experiment,
		Analysis: AnalysisResponse{
			WinnerID:     a.Winner.ID,
			WinnerName:   a.Winner.Name,
			RunnerUpID:   a.RunnerUp.ID,
			RunnerUpName: a.RunnerUp.Name,
			Difference:   finite(a.Difference),
			PercentDiff:  finite(a.PercentDiff),
			Confidence:   finite(a.Confidence),
			HasWinner:    a.HasWinner,
		},
		Variants: rs.Variants,
	}
}

type ReportResponse struct {
	ExperimentID     string                     `json:"experiment_id"`
	TestName         string                     `json:"test_name"`
	Status           experiment.Status          `json:"status"`
	Duration         string                     `json:"duration"`
	TotalImpressions int                        `json:"total_impressions"`
	TotalViews       int                        `json:"total_views"`
	TotalEngagements int                        `json:"total_engagements"`
	WinnerID         string                     `json:"winner_id"`
	WinnerName       string                     `json:"winner_name"`
	Confidence       *float64                   `json:"confidence"`
	PercentDiff      *float64                   `json:"percent_diff"`
	Recommendation   string                     `json:"recommendation"`
	VariantDetails   []experiment.VariantDetail `json:"variant_details"`
}

// NewReportResponse converts a report into its JSON shape.
func NewReportResponse(r *experiment.Report) ReportResponse {
	return ReportResponse{
		ExperimentID:     r.ExperimentID,
		TestName:         r.TestName,
		Status:           r.Status,
		Duration:         r.Duration,
		TotalImpressions: r.TotalImpressions,
		TotalViews:       r.TotalViews,
		TotalEngagements: r.TotalEngagements,
		WinnerID:         r.Winner.ID,
		WinnerName:       r.Winner.Name,
		Confidence:       finite(r.Confidence),
		PercentDiff:      finite(r.PercentDiff),
		Recommendation:   r.Recommendation,
		VariantDetails:   r.VariantDetails,
	}
}

type HealthResponse struct {
	Status           string `json:"status"`
	ExperimentsCount int    `json:"experiments_count"`
	DBSizeBytes      int64  `json:"db_size_bytes"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
}

type createExperimentRequest struct {
	Name         string                         `json:"name"`
	Description  string                         `json:"description"`
	ContentID    string                         `json:"content_id"`
	Variants     []experiment.VariantDefinition `json:"variants"`
	Metrics      []string                       `json:"metrics"`
	TrafficSplit []float64                      `json:"traffic_split"`
}

type assignResponse struct {
	ExperimentID       string             `json:"experiment_id"`
	Variant            experiment.Variant `json:"variant"`
	Final              bool               `json:"final"`
	ImpressionRecorded bool               `json:"impression_recorded"`
}

// eventRequest records one event. Type is impression, view, like, share,
// comment or click; Amount defaults to 1 and only applies to engagements.
type eventRequest struct {
	VariantID string `json:"variant_id"`
	Type      string `json:"type"`
	Amount    *int   `json:"amount"`
}

type eventResponse struct {
	Recorded bool               `json:"recorded"`
	Outcome  experiment.Outcome `json:"outcome"`
}

type createContentRequest struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
	Hashtags     string `json:"hashtags"`
}

type autoCreateRequest struct {
	Kind string `json:"kind"`
}

type stopResponse struct {
	Stopped bool      `json:"stopped"`
	EndDate time.Time `json:"end_date"`
}
