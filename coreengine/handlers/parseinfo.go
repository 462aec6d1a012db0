package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
	"github.com/costcare-ai/agentcore/coreengine/typeutil"
)

// ParseInfo extracts booking fields (name, email, preferred date) from the
// last user message via the LLM, with a deterministic fallback for bare name
// replies. Extraction is fill-only: a field already present on the state is
// never overwritten, and extraction failure is never an error.
type ParseInfo struct {
	svc *Services
}

// NewParseInfo creates the extraction handler.
func NewParseInfo(svc *Services) *ParseInfo {
	return &ParseInfo{svc: svc}
}

func (h *ParseInfo) Name() string { return "parse_info" }

func (h *ParseInfo) Handle(ctx context.Context, state *conversation.State) error {
	msg, ok := state.LastUserMessage()
	if !ok {
		h.svc.Logger.Warn("parse_no_user_messages")
		return nil
	}
	userMessage := msg.Text

	h.extractWithLLM(ctx, state, userMessage)

	// Fallback: date and email known, name missing - a short bare reply is
	// almost certainly the name the assistant just asked for.
	if state.UserName == "" && state.PreferredDate != "" && state.UserEmail != "" {
		if looksLikeName(userMessage) {
			state.UserName = strings.TrimSpace(userMessage)
			h.svc.Logger.Info("parse_name_fallback", "name", state.UserName)
		}
	}

	return nil
}

func (h *ParseInfo) extractWithLLM(ctx context.Context, state *conversation.State, userMessage string) {
	prompt := extractionPrompt(userMessage, h.missingHint(state), h.contextHint(state))

	response, err := h.svc.LLM.Invoke(ctx, prompt)
	if err != nil {
		h.svc.Logger.Warn("parse_llm_failed", "error", err.Error())
		return
	}

	data, err := extractJSON(response)
	if err != nil {
		h.svc.Logger.Warn("parse_no_json", "response_preview", truncate(response, 200))
		return
	}

	if name, ok := typeutil.SafeString(data["name"]); ok && name != "" && state.UserName == "" {
		state.UserName = name
		h.svc.Logger.Info("parse_extracted_name", "name", name)
	}
	if email, ok := typeutil.SafeString(data["email"]); ok && email != "" && state.UserEmail == "" {
		state.UserEmail = email
		h.svc.Logger.Info("parse_extracted_email", "email", email)
	}
	if date, ok := typeutil.SafeString(data["preferred_date"]); ok && date != "" && state.PreferredDate == "" {
		state.PreferredDate = date
		h.svc.Logger.Info("parse_extracted_date", "preferred_date", date)
	}
}

// missingHint tells the model which field the user is most likely answering
// for, based on what is still missing.
func (h *ParseInfo) missingHint(state *conversation.State) string {
	switch {
	case state.UserName == "" && state.PreferredDate != "" && state.UserEmail != "":
		return "\nIMPORTANT: The user is likely providing their NAME in response to a question."
	case state.UserEmail == "" && state.PreferredDate != "":
		return "\nIMPORTANT: The user is likely providing their EMAIL in response to a question."
	case state.PreferredDate == "":
		return "\nIMPORTANT: The user is likely providing their PREFERRED DATE/TIME."
	}
	return ""
}

func (h *ParseInfo) contextHint(state *conversation.State) string {
	var parts []string
	if state.PreferredDate != "" {
		parts = append(parts, fmt.Sprintf("Date requested: %s", state.PreferredDate))
	}
	if state.UserEmail != "" {
		parts = append(parts, fmt.Sprintf("Email provided: %s", state.UserEmail))
	}
	if state.UserName != "" {
		parts = append(parts, fmt.Sprintf("Name already captured: %s", state.UserName))
	}
	if len(parts) == 0 {
		return ""
	}
	return "\n\nBooking context:\n" + strings.Join(parts, "\n")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
