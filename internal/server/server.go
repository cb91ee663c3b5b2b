// Package server exposes the collection HTTP API: preview, start, a
// websocket progress stream and the source configuration.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"RegCollector/internal/collect"
	"RegCollector/internal/config"
	"RegCollector/internal/daterange"
	"RegCollector/internal/domain"
	"RegCollector/internal/ports"
	"RegCollector/internal/preview"
)

// Server handles the auto-collect API.
type Server struct {
	aggregator *preview.Aggregator
	runner     *collect.Runner
	articles   ports.ArticleStore
	jobs       ports.JobStore
	events     ports.EventStream
	sources    []config.SourceConfig
	logger     *slog.Logger
	upgrader   websocket.Upgrader
	http       *http.Server
}

// New wires the API server.
func New(addr string, aggregator *preview.Aggregator, runner *collect.Runner, articles ports.ArticleStore, jobs ports.JobStore, events ports.EventStream, sources []config.SourceConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		aggregator: aggregator,
		runner:     runner,
		articles:   articles,
		jobs:       jobs,
		events:     events,
		sources:    sources,
		logger:     logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auto-collect/preview", s.handlePreview)
	mux.HandleFunc("POST /auto-collect/start", s.handleStart)
	mux.HandleFunc("GET /auto-collect/progress/{job_id}", s.handleProgress)
	mux.HandleFunc("GET /auto-collect/jobs/{job_id}", s.handleJob)
	mux.HandleFunc("GET /auto-collect/config", s.handleConfig)
	mux.HandleFunc("GET /articles", s.handleArticles)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// ListenAndServe runs the server until the context is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req preview.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.aggregator.Preview(r.Context(), req)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			s.writeError(w, http.StatusBadRequest, verr.Msg)
			return
		}
		s.logger.Error("preview failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "preview failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

type startRequest struct {
	Articles []domain.ArticlePreview `json:"articles"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	job, err := s.runner.StartCollection(r.Context(), req.Articles)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			s.writeError(w, http.StatusBadRequest, verr.Msg)
			return
		}
		s.logger.Error("start collection failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "start collection failed")
		return
	}

	s.writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	if _, ok, err := s.jobs.Get(r.Context(), jobID); err != nil {
		s.logger.Error("lookup job", "error", err)
		s.writeError(w, http.StatusInternalServerError, "lookup job failed")
		return
	} else if !ok {
		s.writeError(w, http.StatusNotFound, "unknown job")
		return
	}

	backlog := r.URL.Query().Get("backlog") == "1"
	events, cancel := s.events.Subscribe(jobID, backlog)
	defer cancel()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for event := range events {
		if err := conn.WriteJSON(event); err != nil {
			return
		}
	}
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	job, ok, err := s.jobs.Get(r.Context(), r.PathValue("job_id"))
	if err != nil {
		s.logger.Error("lookup job", "error", err)
		s.writeError(w, http.StatusInternalServerError, "lookup job failed")
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown job")
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

type sourceInfo struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords,omitempty"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	out := make([]sourceInfo, 0, len(s.sources))
	for _, src := range s.sources {
		out = append(out, sourceInfo{Name: src.Name, Keywords: src.Keywords})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sources": out})
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	filter := ports.ArticleFilter{
		CountryCode: r.URL.Query().Get("country"),
	}
	if src := r.URL.Query().Get("sources"); src != "" {
		filter.Sources = strings.Split(src, ",")
	}
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}
	if rawRange := r.URL.Query().Get("date_range"); rawRange != "" {
		rng, err := daterange.Parse(rawRange)
		if err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				s.writeError(w, http.StatusBadRequest, verr.Msg)
				return
			}
			s.writeError(w, http.StatusBadRequest, "invalid date range")
			return
		}
		from, to := rng.Bounds()
		filter.From = &from
		filter.To = &to
	}

	articles, err := s.articles.Query(r.Context(), filter)
	if err != nil {
		s.logger.Error("query articles", "error", err)
		s.writeError(w, http.StatusInternalServerError, "query articles failed")
		return
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"articles": articles})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
