// Package server exposes the booking agent over HTTP: a small JSON API for
// conversations plus health and Prometheus endpoints. Turns for the same
// conversation are serialized; different conversations run concurrently.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
	"github.com/costcare-ai/agentcore/coreengine/recovery"
	"github.com/costcare-ai/agentcore/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxMessageBytes = 16 << 10

// TurnDriver runs one conversation turn. Satisfied by engine.Driver.
type TurnDriver interface {
	ProcessTurn(ctx context.Context, state *conversation.State, userText string)
}

// Server holds the in-memory conversation registry and the turn driver.
type Server struct {
	driver TurnDriver
	logger logging.Logger

	mu            sync.Mutex
	conversations map[string]*managed
}

// managed serializes turns on one conversation.
type managed struct {
	mu    sync.Mutex
	state *conversation.State
}

// New creates a Server.
func New(driver TurnDriver, logger logging.Logger) *Server {
	return &Server{
		driver:        driver,
		logger:        logger,
		conversations: make(map[string]*managed),
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/conversations", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/{id}", s.handleGet)
		r.Put("/{id}", s.handleImport)
		r.Post("/{id}/messages", s.handleMessage)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	state := conversation.New()

	s.mu.Lock()
	s.conversations[state.ConversationID] = &managed{state: state}
	s.mu.Unlock()

	s.logger.Info("conversation_created", "conversation_id", state.ConversationID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"conversation_id": state.ConversationID,
		"stage":           string(state.Stage),
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	m.mu.Lock()
	payload := m.state.ToMap()
	m.mu.Unlock()

	writeJSON(w, http.StatusOK, payload)
}

// handleImport replaces a conversation's state with an exported one, e.g. to
// restore a dump taken via handleGet. Value-level problems are sanitized;
// structurally corrupt payloads are rejected.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, ok := s.lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Dumps come from outside the process; rebuild them behind the panic
	// boundary like any other untrusted input.
	state, err := recovery.SafeExecuteWithResult(s.logger, "import_state", func() (*conversation.State, error) {
		return conversation.FromMap(payload)
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	state.ConversationID = id

	problems := recovery.Validate(state)
	if len(problems) > 0 {
		s.logger.Warn("import_sanitized", "conversation_id", id, "problems", problems)
		recovery.Sanitize(state)
	}

	m.mu.Lock()
	m.state = state
	m.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": id,
		"stage":           string(state.Stage),
		"sanitized":       len(problems) > 0,
	})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	body := http.MaxBytesReader(w, r.Body, maxMessageBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message must not be empty")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	before := len(m.state.Messages)
	s.driver.ProcessTurn(r.Context(), m.state, req.Message)

	resp := map[string]any{
		"conversation_id": m.state.ConversationID,
		"stage":           string(m.state.Stage),
		"reply":           lastAssistantText(m.state, before),
	}
	if m.state.ErrorMessage != "" {
		resp["error"] = m.state.ErrorMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) lookup(id string) (*managed, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.conversations[id]
	return m, ok
}

// lastAssistantText returns the assistant messages this turn produced, if any.
func lastAssistantText(state *conversation.State, before int) string {
	for i := len(state.Messages) - 1; i >= 0 && i >= before; i-- {
		if state.Messages[i].Role == conversation.RoleAssistant {
			return state.Messages[i].Text
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
