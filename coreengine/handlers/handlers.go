// Package handlers provides the per-stage dialog handlers of the booking
// agent. Each handler mutates the conversation state for exactly one
// processing hop and never loops internally; multi-turn behavior emerges from
// the transition table in the engine package re-entering handlers on later
// turns.
//
// Handlers depend on external services only through the small interfaces
// declared here, so the engine can run against the real Gemini / Google
// Calendar / knowledge-base clients or against test doubles.
package handlers

import (
	"context"
	"time"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
	"github.com/costcare-ai/agentcore/logging"
)

// LLM generates a free-text completion for a prompt.
type LLM interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// KnowledgeBase retrieves grounding context for a question. The result is a
// ready-to-embed text block, not raw rows.
type KnowledgeBase interface {
	Search(ctx context.Context, query string, topK int) (string, error)
}

// Window is a free interval reported by the calendar backend.
type Window struct {
	Start time.Time
	End   time.Time
}

// BookingRecord describes a successfully created calendar event.
type BookingRecord struct {
	EventID string
	Link    string
	Status  string
}

// Calendar exposes availability lookup and event creation.
type Calendar interface {
	CheckAvailability(ctx context.Context, start, end time.Time) ([]Window, error)
	Book(ctx context.Context, slot conversation.Slot, name, email string) (*BookingRecord, error)
}

// PromptRegistry resolves prompt text by key. A missing key yields "".
type PromptRegistry interface {
	Get(key string) string
}

// Logger is the interface for logging.
type Logger = logging.Logger

// Handler is a single dialog stage handler.
type Handler interface {
	Name() string
	Handle(ctx context.Context, state *conversation.State) error
}

// Services bundles the external dependencies shared by all handlers.
type Services struct {
	LLM       LLM
	Knowledge KnowledgeBase
	Calendar  Calendar
	Prompts   PromptRegistry
	Logger    Logger

	// Now overrides the clock for slot resolution. Nil means time.Now.
	Now func() time.Time

	// MaxSlots caps how many slots a proposal offers. Zero means 5.
	MaxSlots int

	// TopK is the knowledge-base retrieval depth. Zero means 3.
	TopK int
}

func (s *Services) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Services) maxSlots() int {
	if s.MaxSlots <= 0 {
		return 5
	}
	return s.MaxSlots
}

func (s *Services) topK() int {
	if s.TopK <= 0 {
		return 3
	}
	return s.TopK
}

func (s *Services) prompt(key string) string {
	if s.Prompts == nil {
		return ""
	}
	return s.Prompts.Get(key)
}
