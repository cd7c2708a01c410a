package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/akashaba/stock-tracker-app/internal/domain"
	"github.com/akashaba/stock-tracker-app/internal/usecase"
	"github.com/akashaba/stock-tracker-app/internal/workflow"
)

const maxPayloadBytes = 1 << 20

// WorkflowRunner executes a workflow for a trigger and returns the run
// summary.
type WorkflowRunner interface {
	Run(ctx context.Context, trigger domain.Trigger) domain.WorkflowRun
}

// Server exposes the workflow trigger endpoints.
type Server struct {
	srv     *http.Server
	digest  WorkflowRunner
	welcome WorkflowRunner
	logger  *slog.Logger
}

// NewServer wires the router. Both endpoints respond with the WorkflowRun
// summary; a Failed run maps to HTTP 500.
func NewServer(addr string, digest, welcome WorkflowRunner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{digest: digest, welcome: welcome, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/api/workflows/user-created", s.handleUserCreated).Methods(http.MethodPost)
	r.HandleFunc("/api/workflows/daily-digest", s.handleDailyDigest).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // digest runs synchronously
	}
	return s
}

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleUserCreated(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "cannot read body")
		return
	}
	if !json.Valid(payload) {
		s.writeError(w, http.StatusBadRequest, "payload must be valid JSON")
		return
	}

	run := s.welcome.Run(r.Context(), workflow.EventTrigger(usecase.EventUserCreated, payload))
	s.writeRun(w, run)
}

func (s *Server) handleDailyDigest(w http.ResponseWriter, r *http.Request) {
	run := s.digest.Run(r.Context(), workflow.EventTrigger(usecase.EventDailyNews, nil))
	s.writeRun(w, run)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) writeRun(w http.ResponseWriter, run domain.WorkflowRun) {
	code := http.StatusOK
	if run.Status == domain.RunFailed {
		code = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(run); err != nil {
		s.logger.Error("encode run response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
