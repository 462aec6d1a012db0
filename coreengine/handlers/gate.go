package handlers

import (
	"context"
	"regexp"
	"strings"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
)

var digitPattern = regexp.MustCompile(`\b\d+\b`)

// CheckParse is the gate between routing and information extraction. It
// decides whether the last user message is worth parsing for booking fields,
// or whether the turn should jump ahead (slot selection, confirmation) or
// skip straight to qualification.
type CheckParse struct {
	svc *Services
}

// NewCheckParse creates the parse gate.
func NewCheckParse(svc *Services) *CheckParse {
	return &CheckParse{svc: svc}
}

func (h *CheckParse) Name() string { return "check_parse" }

// Handle applies the gate rules in priority order:
//  1. A confirmed slot awaiting yes/no skips parsing; the turn proceeds to
//     confirmation where the answer is read.
//  2. Proposed slots with no selection and a slot reference in the user's
//     message (a number or an ordinal word) mean slot selection; skip
//     parsing and go to confirmation.
//  3. An assistant-authored last message means there is nothing new to
//     parse.
//  4. Otherwise the user message is parsed.
func (h *CheckParse) Handle(ctx context.Context, state *conversation.State) error {
	if state.ReadyToBook && state.SelectedSlot != nil {
		h.svc.Logger.Debug("gate_awaiting_confirmation")
		state.SkipParse = true
		return nil
	}

	if len(state.AvailableSlots) > 0 && state.SelectedSlot == nil {
		if msg, ok := state.LastUserMessage(); ok {
			// Same reference grammar as the confirmation handler, so anything
			// detected here is also selectable there.
			if _, found := parseSlotReference(strings.ToLower(msg.Text)); found {
				h.svc.Logger.Debug("gate_slot_selection_detected")
				state.Stage = conversation.StageConfirmation
				state.SkipParse = true
				return nil
			}
		}
	}

	if msg, ok := state.LastMessage(); ok && msg.Role == conversation.RoleAssistant {
		state.SkipParse = true
		return nil
	}

	state.SkipParse = false
	return nil
}
