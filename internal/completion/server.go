package completion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iksnae/persona-chat/internal"
)

// MissingKeyMessage is returned when the server has no upstream credential
const MissingKeyMessage = "Missing GEMINI_API_KEY"

const maxRequestSize = 1 << 20

// configurable is implemented by completers that can lack a credential
type configurable interface {
	Configured() bool
}

// Server exposes a Completer as the chat route
type Server struct {
	router      *mux.Router
	completer   internal.Completer
	timeout     time.Duration
	registry    *prometheus.Registry
	completions *prometheus.CounterVec
}

// NewServer builds the router for c. A non-positive timeout falls back to
// internal.DefaultRequestTimeout.
func NewServer(c internal.Completer, timeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = internal.DefaultRequestTimeout
	}

	s := &Server{
		router:    mux.NewRouter(),
		completer: c,
		timeout:   timeout,
		registry:  prometheus.NewRegistry(),
		completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "persona_chat_completions_total",
				Help: "Chat route completions by outcome.",
			},
			[]string{"outcome"},
		),
	}
	s.registry.MustRegister(s.completions)

	s.router.HandleFunc("/api/chat", s.handleChat).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", handleHealthz).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router.Use(logRequests)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		internal.LogInfo("Chat route listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if cc, ok := s.completer.(configurable); s.completer == nil || (ok && !cc.Configured()) {
		s.completions.WithLabelValues("unconfigured").Inc()
		writeJSON(w, http.StatusInternalServerError, ChatResponse{Error: MissingKeyMessage})
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestSize)).Decode(&req); err != nil {
		s.completions.WithLabelValues("bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, ChatResponse{Error: "invalid request body"})
		return
	}
	persona := internal.ResolvePersona(req.Persona)

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	reply, err := s.completer.Complete(ctx, persona, req.Message)
	if err != nil {
		internal.LogError("Chat route error: %v", err)
		s.completions.WithLabelValues("error").Inc()
		writeJSON(w, http.StatusInternalServerError, ChatResponse{Error: err.Error()})
		return
	}

	s.completions.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}

func writeJSON(w http.ResponseWriter, status int, body ChatResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		internal.LogWarn("Failed to write response: %v", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		internal.LogInfo("%s %s %d %s (request %s)", r.Method, r.URL.Path, rec.status,
			time.Since(start).Round(time.Millisecond), requestID)
	})
}
