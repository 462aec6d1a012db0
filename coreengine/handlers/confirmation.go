package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
)

// ordinalWords map spelled-out slot references to zero-based indices.
// Checked in this order, only after the digit pattern found nothing.
var ordinalWords = []struct {
	word  string
	index int
}{
	{"first", 0}, {"1st", 0},
	{"second", 1}, {"2nd", 1},
	{"third", 2}, {"3rd", 2},
	{"fourth", 3}, {"4th", 3},
	{"fifth", 4}, {"5th", 4},
}

var confirmWords = []string{"yes", "confirm", "sure", "ok", "book", "go ahead"}
var cancelWords = []string{"no", "cancel", "wait", "change"}

// Confirmation reads the user's slot selection and, once a slot is chosen,
// their yes/no answer to the booking summary. A fresh selection always takes
// priority: replying with a number while a confirmation is pending re-selects
// instead of confirming.
type Confirmation struct {
	svc *Services
}

// NewConfirmation creates the confirmation handler.
func NewConfirmation(svc *Services) *Confirmation {
	return &Confirmation{svc: svc}
}

func (h *Confirmation) Name() string { return "confirmation" }

func (h *Confirmation) Handle(ctx context.Context, state *conversation.State) error {
	msg, ok := state.LastUserMessage()
	if !ok {
		h.svc.Logger.Warn("confirmation_no_user_messages")
		state.Stage = conversation.StageConfirmation
		return nil
	}
	lower := strings.ToLower(msg.Text)

	selected, found := parseSlotReference(lower)

	switch {
	case found && selected >= 0 && selected < len(state.AvailableSlots):
		h.selectSlot(state, selected)

	case state.ReadyToBook:
		h.readDecision(state, lower)

	default:
		state.AppendAssistant("I didn't catch which time slot you'd like. " +
			"Could you tell me the number? (1, 2, 3, etc.)")
	}

	return nil
}

// parseSlotReference finds a slot index in the message: digits first, then
// ordinal words. Returns the zero-based index and whether anything matched;
// out-of-range values are returned as-is for the caller to reject.
func parseSlotReference(lower string) (int, bool) {
	if m := digitPattern.FindString(lower); m != "" {
		n, err := strconv.Atoi(m)
		if err == nil {
			return n - 1, true
		}
	}
	for _, ord := range ordinalWords {
		if strings.Contains(lower, ord.word) {
			return ord.index, true
		}
	}
	return 0, false
}

func (h *Confirmation) selectSlot(state *conversation.State, index int) {
	slot := state.AvailableSlots[index]
	state.SelectedSlot = &slot
	state.ReadyToBook = true

	state.AppendAssistant(fmt.Sprintf(`Perfect! Let me confirm the details:

Date: %s
Time: %s - %s
Name: %s
Email: %s

Should I go ahead and book this meeting? (Yes/No)`,
		slot.Start.Format("2006-01-02"), slot.StartDisplay, slot.EndDisplay,
		state.UserName, state.UserEmail))

	h.svc.Logger.Info("confirmation_requested", "slot_index", index)
	state.Stage = conversation.StageConfirmation
}

func (h *Confirmation) readDecision(state *conversation.State, lower string) {
	for _, word := range confirmWords {
		if strings.Contains(lower, word) {
			h.svc.Logger.Info("booking_confirmed")
			state.Stage = conversation.StageBooking
			return
		}
	}
	for _, word := range cancelWords {
		if strings.Contains(lower, word) {
			h.svc.Logger.Info("booking_cancelled")
			state.AppendAssistant("No problem! Would you like to choose a different time slot or reschedule?")
			state.ReadyToBook = false
			state.SelectedSlot = nil
			state.Stage = conversation.StageSlotProposal
			return
		}
	}
	state.AppendAssistant("I didn't quite catch that. Should I book this meeting? " +
		"Please say 'yes' to confirm or 'no' to choose a different time.")
}
