package recovery

import (
	"fmt"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
)

// Validate checks the state invariants and returns one error string per
// violation. A nil or empty result means the state is structurally sound.
func Validate(s *conversation.State) []string {
	var problems []string

	if !s.Stage.Valid() {
		problems = append(problems, fmt.Sprintf("invalid stage: %q", s.Stage))
	}

	for i, m := range s.Messages {
		if m.Role != conversation.RoleUser && m.Role != conversation.RoleAssistant {
			problems = append(problems, fmt.Sprintf("message %d: invalid role %q", i, m.Role))
		}
		if m.Text == "" {
			problems = append(problems, fmt.Sprintf("message %d: empty text", i))
		}
	}

	if s.ReadyToBook {
		if s.UserName == "" {
			problems = append(problems, "ready_to_book set without user_name")
		}
		if s.UserEmail == "" {
			problems = append(problems, "ready_to_book set without user_email")
		}
		if s.SelectedSlot == nil {
			problems = append(problems, "ready_to_book set without selected_slot")
		}
	}

	for i, sl := range s.AvailableSlots {
		if sl.Start.IsZero() || sl.End.IsZero() {
			problems = append(problems, fmt.Sprintf("slot %d: missing start or end time", i))
		}
		if sl.Index < 0 {
			problems = append(problems, fmt.Sprintf("slot %d: negative index", i))
		}
	}

	return problems
}

// Sanitize repairs every violation Validate can report, in place, and returns
// the same state. Sanitize is idempotent: applying it twice yields the same
// state as applying it once.
func Sanitize(s *conversation.State) *conversation.State {
	if !s.Stage.Valid() {
		s.Stage = conversation.StageGreeting
	}

	kept := s.Messages[:0]
	for _, m := range s.Messages {
		if (m.Role == conversation.RoleUser || m.Role == conversation.RoleAssistant) && m.Text != "" {
			kept = append(kept, m)
		}
	}
	s.Messages = kept
	if s.Messages == nil {
		s.Messages = []conversation.Message{}
	}

	keptSlots := s.AvailableSlots[:0]
	for _, sl := range s.AvailableSlots {
		if !sl.Start.IsZero() && !sl.End.IsZero() && sl.Index >= 0 {
			keptSlots = append(keptSlots, sl)
		}
	}
	s.AvailableSlots = keptSlots
	if s.AvailableSlots == nil {
		s.AvailableSlots = []conversation.Slot{}
	}

	if s.ReadyToBook && (s.UserName == "" || s.UserEmail == "" || s.SelectedSlot == nil) {
		s.ReadyToBook = false
	}

	return s
}
