package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/headline-goat/clip-goat/internal/experiment"
	"github.com/headline-goat/clip-goat/internal/store"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	engine    *experiment.Engine
	store     store.Store
	logger    *zap.Logger
	port      int
	token     string
	tokenFile string
	router    chi.Router
	startTime time.Time
}

func New(engine *experiment.Engine, st store.Store, logger *zap.Logger, port int, tokenFile string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &Server{
		engine:    engine,
		store:     st,
		logger:    logger,
		port:      port,
		token:     generateToken(),
		tokenFile: tokenFile,
		startTime: time.Now(),
	}

	srv.setupRoutes()
	return srv
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	// Public endpoints
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		// Reads, assignment and event reporting stay open for the player.
		r.Get("/experiments", s.handleListExperiments)
		r.Get("/experiments/{id}", s.handleGetExperiment)
		r.Get("/experiments/{id}/report", s.handleReport)
		r.Get("/experiments/{id}/assign", s.handleAssign)
		r.Post("/experiments/{id}/events", s.handleEvent)
		r.Get("/content", s.handleListContent)
		r.Get("/content/{id}", s.handleGetContent)

		// Mutations need the dashboard token.
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/experiments", s.handleCreateExperiment)
			r.Delete("/experiments/{id}", s.handleDeleteExperiment)
			r.Post("/experiments/{id}/stop", s.handleStop)
			r.Post("/content", s.handleCreateContent)
			r.Post("/content/{id}/experiments", s.handleAutoCreate)
		})
	})

	// Dashboard endpoints (protected)
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/dashboard/experiments/{id}", s.handleDashboardExperiment)
	})

	s.router = r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	// Write token to file for the token command
	if s.tokenFile != "" {
		if err := os.WriteFile(s.tokenFile, []byte(s.token), 0600); err != nil {
			s.logger.Warn("failed to write token file", zap.String("path", s.tokenFile), zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("server gracefully stopped")
	return nil
}

func (s *Server) Token() string {
	return s.token
}

func (s *Server) StartTime() time.Time {
	return s.startTime
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func generateToken() string {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to a simple token if crypto/rand fails
		return "a1b2c3d4"
	}
	return hex.EncodeToString(bytes)
}
