package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
)

const qualificationFallback = "I'd love to help you book a meeting! " +
	"Could you share your name, email, and preferred time?"

// Qualification asks the user for whichever booking fields are still
// missing. When nothing is missing it advances straight to slot proposal
// without producing a message.
type Qualification struct {
	svc *Services
}

// NewQualification creates the qualification handler.
func NewQualification(svc *Services) *Qualification {
	return &Qualification{svc: svc}
}

func (h *Qualification) Name() string { return "qualification" }

func (h *Qualification) Handle(ctx context.Context, state *conversation.State) error {
	missing := state.MissingFields()
	if len(missing) == 0 {
		h.svc.Logger.Info("qualification_complete")
		state.Stage = conversation.StageSlotProposal
		return nil
	}

	h.svc.Logger.Info("qualification_missing_fields", "missing", strings.Join(missing, ", "))

	question, err := h.svc.LLM.Invoke(ctx, h.buildPrompt(state, missing))
	if err != nil {
		h.svc.Logger.Error("qualification_generation_failed", "error", err.Error())
		question = qualificationFallback
	}
	state.AppendAssistant(question)

	// Stay here until every field is collected.
	state.Stage = conversation.StageQualification
	return nil
}

func (h *Qualification) buildPrompt(state *conversation.State, missing []string) string {
	recent := state.Messages
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	lines := make([]string, 0, len(recent))
	for _, m := range recent {
		author := "Assistant"
		if m.Role == conversation.RoleUser {
			author = "User"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", author, m.Text))
	}

	return fmt.Sprintf(`%s

%s

Current situation:
- Missing information: %s
- What we have:
  * Name: %s
  * Email: %s
  * Preferred time: %s

Recent conversation:
%s

Ask the user for the missing information in a friendly, natural way. Be conversational, not robotic:`,
		h.svc.prompt(PromptSystem),
		h.svc.prompt(PromptBooking),
		strings.Join(missing, ", "),
		orNotProvided(state.UserName),
		orNotProvided(state.UserEmail),
		orNotProvided(state.PreferredDate),
		strings.Join(lines, "\n"))
}

func orNotProvided(v string) string {
	if v == "" {
		return "Not provided"
	}
	return v
}
