// Package api exposes the pipeline over HTTP for the chat frontend.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sellerchat/sellerchat/internal/handler"
	"github.com/sellerchat/sellerchat/internal/metrics"
	"github.com/sellerchat/sellerchat/internal/pipeline"
	"github.com/sellerchat/sellerchat/internal/store"
)

// Server wires the pipeline, handler registry and transcript store behind
// an HTTP mux.
type Server struct {
	engine   *pipeline.Engine
	registry *handler.Registry
	store    store.Store
	token    string

	gatherer prometheus.Gatherer

	httpServer *http.Server
}

// ChatResponse is the body of a successful POST /v1/chat.
type ChatResponse struct {
	RequestID string `json:"request_id"`
	SessionID string `json:"session_id"`
	handler.Response
}

// NewServer builds a server. token may be empty, which disables
// authentication. st may be nil, which disables the transcript.
func NewServer(engine *pipeline.Engine, registry *handler.Registry, st store.Store, token string) (*Server, error) {
	reg := prometheus.NewRegistry()
	if err := metrics.Register(reg); err != nil {
		return nil, fmt.Errorf("registering collectors: %w", err)
	}
	return &Server{
		engine:   engine,
		registry: registry,
		store:    st,
		token:    token,
		gatherer: reg,
	}, nil
}

// Handler returns the fully routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("POST /v1/chat", s.auth(s.handleChat))
	mux.HandleFunc("GET /v1/sessions/{id}", s.auth(s.handleSession))
	return mux
}

// ListenAndServe blocks serving HTTP on addr until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// auth enforces the bearer token when one is configured.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if got != s.token {
				writeError(w, http.StatusUnauthorized, "invalid or missing token")
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ObserveRequestError()
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	requestID := uuid.NewString()

	res, err := s.engine.Resolve(r.Context(), req)
	if err != nil {
		metrics.ObserveRequestError()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := s.registry.Dispatch(r.Context(), req, res)
	if err != nil {
		metrics.ObserveRequestError()
		writeError(w, http.StatusInternalServerError, "handler failed: "+err.Error())
		return
	}

	metrics.ObserveResolution(string(res.Category), string(res.Outcome), res.RetryCount, time.Since(start))
	s.persist(r.Context(), requestID, req, res, resp)

	writeJSON(w, http.StatusOK, ChatResponse{
		RequestID: requestID,
		SessionID: req.SessionID,
		Response:  resp,
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "transcript disabled")
		return
	}
	sessionID := r.PathValue("id")

	opts := store.ListOpts{}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}

	rows, err := s.store.ListSession(r.Context(), sessionID, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":   sessionID,
		"interactions": rows,
	})
}

// persist is best effort: a transcript write failure must not fail the
// seller's request.
func (s *Server) persist(ctx context.Context, requestID string, req pipeline.Request, res pipeline.Resolution, resp handler.Response) {
	if s.store == nil {
		return
	}
	in := &store.Interaction{
		RequestID:       requestID,
		SessionID:       req.SessionID,
		Message:         req.Message,
		InteractionType: req.InteractionType,
		Category:        string(res.Category),
		DateStart:       res.Primary.Start,
		DateEnd:         res.Primary.End,
		ASIN:            res.ASIN,
		Outcome:         string(res.Outcome),
		IsValid:         res.IsValid,
		RetryCount:      res.RetryCount,
		Feedback:        res.Feedback,
		ResponseText:    resp.Text,
	}
	if res.Compare != nil {
		in.CompStart = res.Compare.Start
		in.CompEnd = res.Compare.End
	}
	s.store.AddInteraction(ctx, in)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
