package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/headline-goat/clip-goat/internal/experiment"
)

//go:embed templates/*.html assets/style.css
var dashboardFS embed.FS

var dashboardTemplates = template.Must(template.ParseFS(dashboardFS, "templates/*.html"))

// Dashboard template data structures
type layoutData struct {
	Title   string
	CSS     template.CSS
	Content template.HTML
}

type listData struct {
	Experiments []experimentListItem
}

type experimentListItem struct {
	ID            string
	Name          string
	Status        string
	VariantCount  int
	TotalViews    int
	AvgEngagement string
	StartedAt     string
	WinnerName    string
}

type detailData struct {
	Report         *experiment.Report
	Confidence     string
	PercentDiff    string
	StartedAt      string
	LeadingVariant string
	Variants       []detailVariant
}

type detailVariant struct {
	Rank              int
	Name              string
	Value             string
	Impressions       int
	Views             int
	Engagements       int
	EngagementPercent float64
	CILowerPercent    float64
	CIUpperPercent    float64
	Improvement       float64
	Winner            bool
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	// Handle logout
	if r.URL.Query().Get("logout") == "1" {
		http.SetCookie(w, &http.Cookie{
			Name:   tokenCookieName,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	list := s.engine.List()
	items := make([]experimentListItem, len(list))
	for i, exp := range list {
		totalViews := 0
		totalEngagements := 0
		for _, v := range exp.Variants {
			totalViews += v.Results.Views
			totalEngagements += v.Results.Engagements()
		}

		avg := "0%"
		if totalViews > 0 {
			avg = formatPercentage(float64(totalEngagements) / float64(totalViews) * 100)
		}

		item := experimentListItem{
			ID:            exp.ID,
			Name:          exp.Name,
			Status:        string(exp.Status),
			VariantCount:  len(exp.Variants),
			TotalViews:    totalViews,
			AvgEngagement: avg,
			StartedAt:     exp.StartDate.Format("Jan 2, 2006"),
		}
		if exp.Winner != nil {
			item.WinnerName = exp.Winner.Name
		}
		items[i] = item
	}

	s.renderDashboard(w, "Dashboard", "list.html", listData{Experiments: items})
}

func (s *Server) handleDashboardExperiment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	exp, ok := s.engine.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	report, ok := s.engine.Report(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	variants := make([]detailVariant, len(report.VariantDetails))
	for i, d := range report.VariantDetails {
		var value string
		if v, ok := exp.Variant(d.ID); ok {
			value = v.Value
		}
		variants[i] = detailVariant{
			Rank:              d.Rank,
			Name:              d.Name,
			Value:             value,
			Impressions:       d.Metrics.Impressions,
			Views:             d.Metrics.Views,
			Engagements:       d.Metrics.Engagements(),
			EngagementPercent: d.Metrics.Engagement,
			CILowerPercent:    d.EngagementLow,
			CIUpperPercent:    d.EngagementHigh,
			Improvement:       d.Improvement,
			Winner:            exp.Winner != nil && exp.Winner.ID == d.ID,
		}
	}

	data := detailData{
		Report:         report,
		Confidence:     formatMaybe(report.Confidence),
		PercentDiff:    formatMaybe(report.PercentDiff),
		StartedAt:      exp.StartDate.Format("Jan 2, 2006"),
		LeadingVariant: report.Winner.Name,
		Variants:       variants,
	}

	s.renderDashboard(w, exp.Name, "detail.html", data)
}

func (s *Server) renderDashboard(w http.ResponseWriter, title, contentTemplate string, data any) {
	css, err := dashboardFS.ReadFile("assets/style.css")
	if err != nil {
		http.Error(w, "Failed to load styles", http.StatusInternalServerError)
		return
	}

	var content bytes.Buffer
	if err := dashboardTemplates.ExecuteTemplate(&content, contentTemplate, data); err != nil {
		s.logger.Error("render dashboard content", zap.String("template", contentTemplate), zap.Error(err))
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}

	var page bytes.Buffer
	err = dashboardTemplates.ExecuteTemplate(&page, "layout.html", layoutData{
		Title:   title,
		CSS:     template.CSS(css),
		Content: template.HTML(content.String()),
	})
	if err != nil {
		s.logger.Error("render dashboard layout", zap.Error(err))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = page.WriteTo(w)
}

func formatPercentage(p float64) string {
	if p < 0.01 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", p)
}

// formatMaybe renders non-finite values as "n/a".
func formatMaybe(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", f)
}
