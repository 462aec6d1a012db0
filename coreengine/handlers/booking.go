package handlers

import (
	"context"
	"fmt"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
)

// Booking performs the calendar insert for the confirmed slot. Success ends
// the flow; failure clears the selection and sends the user back to slot
// proposal, since the most likely cause is the slot having just been taken.
type Booking struct {
	svc *Services
}

// NewBooking creates the booking handler.
func NewBooking(svc *Services) *Booking {
	return &Booking{svc: svc}
}

func (h *Booking) Name() string { return "booking" }

func (h *Booking) Handle(ctx context.Context, state *conversation.State) error {
	if state.SelectedSlot == nil || state.UserName == "" || state.UserEmail == "" {
		// Should not happen behind the confirmation handler; treat as failure.
		h.fail(state, fmt.Errorf("booking attempted without a confirmed slot"))
		return nil
	}
	slot := *state.SelectedSlot

	h.svc.Logger.Info("booking_meeting",
		"name", state.UserName, "start", slot.Start.Format("2006-01-02 15:04"))

	record, err := h.svc.Calendar.Book(ctx, slot, state.UserName, state.UserEmail)
	if err != nil {
		h.svc.Logger.Error("booking_failed", "error", err.Error())
		h.fail(state, err)
		return nil
	}

	state.AppendAssistant(fmt.Sprintf(`All set! Your meeting is booked.

Details:
- Date: %s
- Time: %s - %s
- Name: %s
- Email: %s

You'll receive a calendar invitation at %s with the meeting link and our team member's contact info.

Looking forward to speaking with you!

Is there anything else I can help you with?`,
		slot.Start.Format("2006-01-02"), slot.StartDisplay, slot.EndDisplay,
		state.UserName, state.UserEmail, state.UserEmail))

	h.svc.Logger.Info("booking_succeeded", "event_id", record.EventID, "status", record.Status)
	state.Stage = conversation.StageDone
	return nil
}

func (h *Booking) fail(state *conversation.State, err error) {
	state.AppendAssistant(fmt.Sprintf(`I'm sorry, there was an error booking the meeting: %s

This might be because:
- The slot was just taken by someone else
- There's a calendar sync issue

Would you like to try a different time slot?`, err.Error()))

	state.SelectedSlot = nil
	state.ReadyToBook = false
	state.Stage = conversation.StageSlotProposal
}
