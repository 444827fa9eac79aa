package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/calcpad"
	"github.com/aretw0/calcpad/internal/logging"
	"github.com/aretw0/calcpad/pkg/domain"
	"github.com/aretw0/calcpad/pkg/ports"
	"github.com/aretw0/calcpad/pkg/runner"
	"github.com/aretw0/calcpad/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/aretw0/calcpad/pkg/adapters/http")

// Server exposes calculator sessions over HTTP.
//
// Session managers passed to NewHandler should build calculators with
// calcpad.WithConfirmer(ports.ContextConfirmer) so that
// "DELETE /sessions/{id}/history?confirm=true" can approve the clear.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server for the session manager.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		Sessions: sessions,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates the HTTP handler for the session manager.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(sessions, opts...).Handler()
}

// Handler builds the router, wrapped in OpenTelemetry instrumentation.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", s.OpenSession)
			r.Get("/", s.GetSession)
			r.Delete("/", s.CloseSession)
			r.Post("/intents", s.PostIntent)
			r.Post("/keys", s.PostKeys)
			r.Get("/history", s.GetHistory)
			r.Delete("/history", s.ClearHistory)
			r.Post("/history/{index}/select", s.SelectHistory)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	return otelhttp.NewHandler(enableCORS(r), "calcpad-http",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/metrics" && r.URL.Path != "/healthz"
		}),
	)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start),
		)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionResponse is the body returned by every session endpoint.
type SessionResponse struct {
	ID       string               `json:"id"`
	Snapshot domain.Snapshot      `json:"snapshot"`
	History  []domain.HistoryItem `json:"history"`
}

// KeysRequest is the body of POST /sessions/{id}/keys.
type KeysRequest struct {
	Keys string `json:"keys"`
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "calcpad-http",
		"version": strings.TrimSpace(calcpad.Version),
	})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": s.Sessions.List()})
}

// CreateSession handles POST /sessions with a fresh random ID.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	s.open(w, r, uuid.NewString(), http.StatusCreated)
}

// OpenSession handles PUT /sessions/{id}: it opens a named session,
// loading its persisted history, or returns it if already open.
func (s *Server) OpenSession(w http.ResponseWriter, r *http.Request) {
	s.open(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (s *Server) open(w http.ResponseWriter, r *http.Request, id string, status int) {
	calc, err := s.Sessions.Open(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, response(id, calc))
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	calc, err := s.Sessions.Get(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, response(id, calc))
}

// CloseSession handles DELETE /sessions/{id}. The history stays persisted.
func (s *Server) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostIntent handles POST /sessions/{id}/intents with one JSON intent.
func (s *Server) PostIntent(w http.ResponseWriter, r *http.Request) {
	var intent domain.Intent
	if err := json.NewDecoder(r.Body).Decode(&intent); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	s.dispatch(w, r, intent)
}

// PostKeys handles POST /sessions/{id}/keys with a line of keys ("12+3=").
func (s *Server) PostKeys(w http.ResponseWriter, r *http.Request) {
	var body KeysRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	clean, err := runner.CleanKeys(body.Keys)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	intents, err := runner.ParseLine(clean)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	s.dispatch(w, r, intents...)
}

// GetHistory handles GET /sessions/{id}/history.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	calc, err := s.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]domain.HistoryItem{"history": calc.History()})
}

// ClearHistory handles DELETE /sessions/{id}/history. Without confirm=true
// the request is a no-op, the same as a refused confirmation prompt.
func (s *Server) ClearHistory(w http.ResponseWriter, r *http.Request) {
	confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	r = r.WithContext(ports.WithApproval(r.Context(), confirm))
	s.dispatch(w, r, domain.ClearHistoryIntent())
}

// SelectHistory handles POST /sessions/{id}/history/{index}/select.
func (s *Server) SelectHistory(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: index must be an integer", errBadRequest))
		return
	}
	s.dispatch(w, r, domain.SelectHistoryIntent(index))
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, intents ...domain.Intent) {
	id := chi.URLParam(r, "id")
	ctx, span := tracer.Start(r.Context(), "calcpad.dispatch",
		trace.WithAttributes(
			attribute.String("calcpad.session", id),
			attribute.Int("calcpad.intents", len(intents)),
		),
	)
	defer span.End()

	calc, err := s.Sessions.Get(id)
	if err != nil {
		s.fail(ctx, span, w, r, err)
		return
	}

	snap, err := s.Sessions.Dispatch(ctx, id, intents...)
	if err != nil {
		s.fail(ctx, span, w, r, err)
		return
	}

	resp := response(id, calc)
	resp.Snapshot = snap
	span.SetAttributes(attribute.String("calcpad.display", resp.Snapshot.Main))
	span.SetStatus(codes.Ok, "")

	if payload, err := json.Marshal(resp); err == nil {
		s.Streams.Broadcast(id, string(payload))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) fail(ctx context.Context, span trace.Span, w http.ResponseWriter, r *http.Request, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.writeError(w, r.WithContext(ctx), err)
}

func response(id string, calc *calcpad.Calculator) SessionResponse {
	return SessionResponse{
		ID:       id,
		Snapshot: calc.Snapshot(),
		History:  calc.History(),
	}
}

var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrInvalidDigit),
		errors.Is(err, domain.ErrInvalidOperator),
		errors.Is(err, domain.ErrInvalidIntent):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrHistoryIndex):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeError writes a JSON error body with the request ID.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	requestID := middleware.GetReqID(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", requestID, "err", err)
	}
	writeJSON(w, status, map[string]string{
		"error":      err.Error(),
		"request_id": requestID,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// StreamManager fans session updates out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // session ID -> set of channels
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a buffered channel for a session. The returned
// function unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Broadcast sends msg to every subscriber of the session. Slow clients
// with a full buffer miss the message.
func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribers returns the number of subscribers of a session.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE). Every successful
// dispatch on the session is pushed as a SessionResponse.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.Sessions.Get(id); err != nil {
		s.writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, r, errors.New("streaming not supported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
