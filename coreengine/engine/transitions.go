package engine

import (
	"github.com/costcare-ai/agentcore/coreengine/conversation"
)

// step names one hop of a turn. The step space is larger than the stage
// space: the parse gate and the extractor run inside a turn but are never a
// resting stage between turns.
type step string

const (
	stepRouter        step = "router"
	stepRAGQA         step = "rag_qa"
	stepCheckParse    step = "check_parse"
	stepParseInfo     step = "parse_info"
	stepQualification step = "qualification"
	stepSlotProposal  step = "slot_proposal"
	stepConfirmation  step = "confirmation"
	stepBooking       step = "booking"

	// stepSuspend ends the turn; the conversation waits for the next user
	// message at whatever stage the last handler left behind.
	stepSuspend step = "suspend"
)

// nextStep is the transition table: given the step that just ran and the
// state it produced, pick the next step or suspend. Pure function, no side
// effects.
func nextStep(current step, state *conversation.State) step {
	switch current {
	case stepRouter:
		switch state.Stage {
		case conversation.StageRAGQA:
			return stepRAGQA
		case conversation.StageQualification:
			return stepCheckParse
		case conversation.StageConfirmation:
			return stepConfirmation
		case conversation.StageSlotProposal:
			return stepSlotProposal
		case conversation.StageBooking:
			return stepBooking
		default:
			// Unrecognized input is treated as a question.
			return stepRAGQA
		}

	case stepCheckParse:
		// A pending confirmation reads the user's yes/no before anything
		// else may happen; booking is only reachable through it.
		if state.ReadyToBook && state.SelectedSlot != nil {
			return stepConfirmation
		}
		if state.Stage == conversation.StageConfirmation {
			return stepConfirmation
		}
		if state.SkipParse {
			return stepQualification
		}
		return stepParseInfo

	case stepParseInfo:
		if state.BookingFieldsComplete() {
			return stepSlotProposal
		}
		// Something is still missing; ask for it before suspending.
		return stepQualification

	case stepQualification:
		if state.Stage == conversation.StageSlotProposal {
			return stepSlotProposal
		}
		return stepSuspend

	case stepConfirmation:
		if state.Stage == conversation.StageBooking {
			return stepBooking
		}
		return stepSuspend

	default:
		// rag_qa, slot_proposal and booking always end the turn: each leaves
		// a user-facing message (or a terminal stage) behind.
		return stepSuspend
	}
}
