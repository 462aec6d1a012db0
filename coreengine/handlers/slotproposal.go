package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
)

// SlotProposal resolves the user's date preference into a search window,
// queries the calendar and proposes up to MaxSlots slots. A calendar failure
// is treated exactly like a day with no availability: the user is asked for
// a different day, never shown an error.
type SlotProposal struct {
	svc *Services
}

// NewSlotProposal creates the slot proposal handler.
func NewSlotProposal(svc *Services) *SlotProposal {
	return &SlotProposal{svc: svc}
}

func (h *SlotProposal) Name() string { return "slot_proposal" }

func (h *SlotProposal) Handle(ctx context.Context, state *conversation.State) error {
	preference := state.PreferredDate
	if preference == "" {
		preference = "tomorrow"
	}

	start, end := ResolveWindow(preference, h.svc.now())
	h.svc.Logger.Info("slot_search", "preference", preference,
		"window_start", start.Format("2006-01-02 15:04"), "window_end", end.Format("2006-01-02 15:04"))

	windows, err := h.svc.Calendar.CheckAvailability(ctx, start, end)
	if err != nil {
		h.svc.Logger.Error("slot_availability_failed", "error", err.Error())
		windows = nil
	}

	limit := h.svc.maxSlots()
	if len(windows) > limit {
		windows = windows[:limit]
	}

	state.AvailableSlots = make([]conversation.Slot, 0, len(windows))
	for i, w := range windows {
		state.AvailableSlots = append(state.AvailableSlots, conversation.Slot{
			Index:        i,
			Start:        w.Start,
			End:          w.End,
			StartDisplay: w.Start.Format("03:04 PM"),
			EndDisplay:   w.End.Format("03:04 PM"),
		})
	}

	if len(state.AvailableSlots) == 0 {
		h.proposeNothing(ctx, state, preference)
		return nil
	}

	h.proposeSlots(ctx, state)
	return nil
}

func (h *SlotProposal) proposeNothing(ctx context.Context, state *conversation.State, preference string) {
	prompt := fmt.Sprintf(`The user requested a meeting for %q but no time slots are available.

Politely inform them and suggest:
1. Trying different days this week
2. Asking for their flexibility

Be helpful and friendly:`, preference)

	reply, err := h.svc.LLM.Invoke(ctx, prompt)
	if err != nil {
		h.svc.Logger.Error("slot_no_availability_generation_failed", "error", err.Error())
		reply = fmt.Sprintf("I don't see any available slots for %s. Would you like to try a different day?", preference)
	}
	state.AppendAssistant(reply)

	// Back to qualification to collect a different day.
	state.Stage = conversation.StageQualification
}

func (h *SlotProposal) proposeSlots(ctx context.Context, state *conversation.State) {
	lines := make([]string, 0, len(state.AvailableSlots))
	for _, sl := range state.AvailableSlots {
		lines = append(lines, fmt.Sprintf("%d. %s - %s", sl.Index+1, sl.StartDisplay, sl.EndDisplay))
	}
	slotsText := strings.Join(lines, "\n")

	prompt := fmt.Sprintf(`The user requested a meeting and here are the available time slots:

%s

Present these options in a friendly way and ask them to choose by number (1, 2, 3, etc.). Keep it conversational:`, slotsText)

	reply, err := h.svc.LLM.Invoke(ctx, prompt)
	if err != nil {
		h.svc.Logger.Error("slot_proposal_generation_failed", "error", err.Error())
		reply = fmt.Sprintf("Great! I found these available times:\n\n%s\n\nWhich one works best for you? Just tell me the number.", slotsText)
	}
	state.AppendAssistant(reply)

	h.svc.Logger.Info("slots_proposed", "count", len(state.AvailableSlots))
	state.Stage = conversation.StageConfirmation
}
