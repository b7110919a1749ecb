// Package api exposes the HTTP interface for the shorts retrieval service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dotblossom/shorts-radar/internal/metrics"
	"github.com/dotblossom/shorts-radar/internal/shorts"
)

// searchTimeout bounds one search request end to end, including browser
// retries and downstream calls.
const searchTimeout = 5 * time.Minute

// SearchPipeline runs one ranked retrieval for a product.
type SearchPipeline interface {
	Run(ctx context.Context, productCode int, productName string) ([]shorts.Candidate, error)
}

// ResultSink persists ranked candidates and notifies downstream.
type ResultSink interface {
	SaveAndNotify(ctx context.Context, productCode int, ranked []shorts.Candidate)
}

// Pinger reports readiness of the backing database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wires HTTP handlers to the search pipelines and the persister.
type Server struct {
	router       chi.Router
	shortsSearch SearchPipeline
	videosSearch SearchPipeline
	sink         ResultSink
	db           Pinger
	logger       *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(shortsSearch, videosSearch SearchPipeline, sink ResultSink, db Pinger, logger *zap.Logger) *Server {
	s := &Server{
		shortsSearch: shortsSearch,
		videosSearch: videosSearch,
		sink:         sink,
		db:           db,
		logger:       logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(searchTimeout))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/shorts/search", s.searchShorts)
		r.Post("/videos/search", s.searchVideos)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.writeError(w, http.StatusServiceUnavailable, "database not ready")
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type searchRequest struct {
	ProductCode *int   `json:"product_code"`
	ProductName string `json:"product_name"`
}

func (s *Server) searchShorts(w http.ResponseWriter, r *http.Request) {
	s.runSearch(w, r, s.shortsSearch)
}

func (s *Server) searchVideos(w http.ResponseWriter, r *http.Request) {
	s.runSearch(w, r, s.videosSearch)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, pipeline SearchPipeline) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ProductCode == nil || req.ProductName == "" {
		s.writeError(w, http.StatusBadRequest, "'product_code' and 'product_name' are required")
		return
	}

	ranked, err := pipeline.Run(r.Context(), *req.ProductCode, req.ProductName)
	if err != nil {
		s.logger.Error("search pipeline failed",
			zap.Int("product_code", *req.ProductCode),
			zap.String("product_name", req.ProductName),
			zap.Error(err),
		)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.sink.SaveAndNotify(r.Context(), *req.ProductCode, ranked)

	if ranked == nil {
		ranked = []shorts.Candidate{}
	}
	s.writeJSON(w, http.StatusOK, ranked)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		duration := time.Since(start)
		metrics.ObserveHTTPRequest(r.Method, r.URL.Path, ww.status, duration)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", duration.Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
