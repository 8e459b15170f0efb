package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/headline-goat/clip-goat/internal/experiment"
	"github.com/headline-goat/clip-goat/internal/store"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response error", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.CountExperiments(r.Context())
	if err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// size is informational; a failed read reports 0
	size, err := s.store.SizeBytes(r.Context())
	if err != nil {
		s.logger.Warn("failed to read database size", zap.Error(err))
	}

	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:           "ok",
		ExperimentsCount: count,
		DBSizeBytes:      size,
		UptimeSeconds:    int64(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleListExperiments(w http.ResponseWriter, r *http.Request) {
	var list []*experiment.Experiment
	switch status := r.URL.Query().Get("status"); status {
	case "":
		list = s.engine.List()
	case string(experiment.StatusActive):
		list = s.engine.Active()
	default:
		http.Error(w, "unsupported status filter", http.StatusBadRequest)
		return
	}

	// Return empty array instead of null
	if list == nil {
		list = []*experiment.Experiment{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"experiments": list})
}

func (s *Server) handleCreateExperiment(w http.ResponseWriter, r *http.Request) {
	var req createExperimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	exp, err := s.engine.Create(r.Context(), experiment.Definition{
		Name:         req.Name,
		Description:  req.Description,
		ContentID:    req.ContentID,
		Variants:     req.Variants,
		Metrics:      req.Metrics,
		TrafficSplit: req.TrafficSplit,
	})
	if errors.Is(err, experiment.ErrTooFewVariants) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		s.logger.Error("create experiment error", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusCreated, exp)
}

func (s *Server) handleGetExperiment(w http.ResponseWriter, r *http.Request) {
	rs, ok := s.engine.Results(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "experiment not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, NewResultsResponse(rs))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, ok := s.engine.Report(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "experiment not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, NewReportResponse(report))
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.engine.Get(id); !ok {
		http.Error(w, "experiment not found", http.StatusNotFound)
		return
	}
	if !s.engine.Stop(r.Context(), id) {
		http.Error(w, "experiment is not active", http.StatusConflict)
		return
	}

	exp, _ := s.engine.Get(id)
	resp := stopResponse{Stopped: true}
	if exp != nil && exp.EndDate != nil {
		resp.EndDate = *exp.EndDate
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleDeleteExperiment always answers 204; deleting an unknown id is a no-op.
func (s *Server) handleDeleteExperiment(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.logger.Error("delete experiment error", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAssign picks the variant to show. Completed experiments always serve
// their winner; stopped ones have nothing to serve.
func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	exp, ok := s.engine.Get(id)
	if !ok {
		http.Error(w, "experiment not found", http.StatusNotFound)
		return
	}

	resp := assignResponse{ExperimentID: exp.ID}
	switch {
	case exp.Winner != nil:
		resp.Variant = *exp.Winner
		resp.Final = true
	case exp.Status == experiment.StatusActive:
		resp.Variant = s.engine.Select(exp)
		if r.URL.Query().Get("impression") == "1" {
			resp.ImpressionRecorded = s.engine.RecordImpression(r.Context(), exp.ID, resp.Variant.ID).Recorded()
		}
	default:
		http.Error(w, "experiment is not active", http.StatusConflict)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleEvent records one event. Unknown experiments, variants and closed
// experiments are not errors: the outcome field reports what happened.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.VariantID == "" {
		http.Error(w, "variant_id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var outcome experiment.Outcome
	switch req.Type {
	case "impression":
		outcome = s.engine.RecordImpression(ctx, id, req.VariantID)
	case "view":
		outcome = s.engine.RecordView(ctx, id, req.VariantID)
	case string(experiment.EventLike), string(experiment.EventShare),
		string(experiment.EventComment), string(experiment.EventClick):
		amount := 1
		if req.Amount != nil {
			amount = *req.Amount
		}
		outcome = s.engine.RecordEngagement(ctx, id, req.VariantID, experiment.EventKind(req.Type), amount)
	default:
		http.Error(w, "Invalid event type", http.StatusBadRequest)
		return
	}

	s.writeJSON(w, http.StatusOK, eventResponse{Recorded: outcome.Recorded(), Outcome: outcome})
}

func (s *Server) handleListContent(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListContent(r.Context())
	if err != nil {
		s.logger.Error("list content error", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []*experiment.Content{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"content": items})
}

func (s *Server) handleCreateContent(w http.ResponseWriter, r *http.Request) {
	var req createContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	c, err := s.store.CreateContent(r.Context(), experiment.Content{
		ID:           req.ID,
		Title:        req.Title,
		ThumbnailURL: req.ThumbnailURL,
		Hashtags:     req.Hashtags,
	})
	if err != nil {
		s.logger.Error("create content error", zap.Error(err))
		http.Error(w, "failed to create content", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetContent(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "content not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("get content error", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleAutoCreate(w http.ResponseWriter, r *http.Request) {
	var req autoCreateRequest
	// the body is optional
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	var kind experiment.VariantType
	if req.Kind != "" {
		var err error
		if kind, err = experiment.ParseVariantType(req.Kind); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	exp, err := s.engine.AutoCreate(r.Context(), chi.URLParam(r, "id"), kind)
	switch {
	case errors.Is(err, experiment.ErrNotFound):
		http.Error(w, "content not found", http.StatusNotFound)
	case errors.Is(err, experiment.ErrEmptyBaseline):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case err != nil:
		s.logger.Error("auto-create experiment error", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		s.writeJSON(w, http.StatusCreated, exp)
	}
}
