package conversation

import (
	"fmt"
	"time"

	"github.com/costcare-ai/agentcore/coreengine/typeutil"
)

// =============================================================================
// Serialization - untyped map boundary
//
// State crosses process boundaries (HTTP payloads, debug dumps) as a plain
// map. FromMap is the only door through which structurally corrupt data can
// enter; it rejects wrong container shapes and leaves value-level problems
// (unknown stage, malformed slots) for the validator to report.
// =============================================================================

// ToMap converts the state to a plain map for serialization.
func (s *State) ToMap() map[string]any {
	messages := make([]any, 0, len(s.Messages))
	for _, m := range s.Messages {
		messages = append(messages, map[string]any{
			"role": string(m.Role),
			"text": m.Text,
		})
	}

	slots := make([]any, 0, len(s.AvailableSlots))
	for _, sl := range s.AvailableSlots {
		slots = append(slots, slotToMap(sl))
	}

	result := map[string]any{
		"conversation_id": s.ConversationID,
		"messages":        messages,
		"stage":           string(s.Stage),
		"user_name":       s.UserName,
		"user_email":      s.UserEmail,
		"preferred_date":  s.PreferredDate,
		"available_slots": slots,
		"needs_rag":       s.NeedsRAG,
		"ready_to_book":   s.ReadyToBook,
		"skip_parse":      s.SkipParse,
		"rag_context":     s.RAGContext,
		"error_message":   s.ErrorMessage,
		"created_at":      s.CreatedAt.Format(time.RFC3339),
	}
	if s.SelectedSlot != nil {
		result["selected_slot"] = slotToMap(*s.SelectedSlot)
	}
	return result
}

func slotToMap(sl Slot) map[string]any {
	return map[string]any{
		"index":         sl.Index,
		"start":         sl.Start.Format(time.RFC3339),
		"end":           sl.End.Format(time.RFC3339),
		"start_display": sl.StartDisplay,
		"end_display":   sl.EndDisplay,
	}
}

// FromMap reconstructs a State from a plain map. Container fields of the
// wrong shape (messages or available_slots not a list, selected_slot not a
// map) are rejected with an error; scalar fields fall back to zero values
// and are left for Validate to flag.
func FromMap(data map[string]any) (*State, error) {
	if data == nil {
		return nil, fmt.Errorf("conversation: nil state map")
	}

	s := New()
	s.ConversationID = typeutil.SafeStringDefault(data["conversation_id"], s.ConversationID)
	s.Stage = Stage(typeutil.SafeStringDefault(data["stage"], string(StageGreeting)))
	s.UserName = typeutil.SafeStringDefault(data["user_name"], "")
	s.UserEmail = typeutil.SafeStringDefault(data["user_email"], "")
	s.PreferredDate = typeutil.SafeStringDefault(data["preferred_date"], "")
	s.NeedsRAG = typeutil.SafeBoolDefault(data["needs_rag"], false)
	s.ReadyToBook = typeutil.SafeBoolDefault(data["ready_to_book"], false)
	s.SkipParse = typeutil.SafeBoolDefault(data["skip_parse"], false)
	s.RAGContext = typeutil.SafeStringDefault(data["rag_context"], "")
	s.ErrorMessage = typeutil.SafeStringDefault(data["error_message"], "")

	if v, ok := data["created_at"]; ok {
		if str, ok := typeutil.SafeString(v); ok {
			if t, err := time.Parse(time.RFC3339, str); err == nil {
				s.CreatedAt = t
			}
		}
	}

	if v, ok := data["messages"]; ok && v != nil {
		items, ok := typeutil.SafeSlice(v)
		if !ok {
			return nil, fmt.Errorf("conversation: messages is not a list (got %T)", v)
		}
		s.Messages = make([]Message, 0, len(items))
		for _, item := range items {
			m, ok := typeutil.SafeMapStringAny(item)
			if !ok {
				// Keep a placeholder entry so the validator can report it.
				s.Messages = append(s.Messages, Message{})
				continue
			}
			s.Messages = append(s.Messages, Message{
				Role: Role(typeutil.SafeStringDefault(m["role"], "")),
				Text: typeutil.SafeStringDefault(m["text"], ""),
			})
		}
	}

	if v, ok := data["available_slots"]; ok && v != nil {
		items, ok := typeutil.SafeSlice(v)
		if !ok {
			return nil, fmt.Errorf("conversation: available_slots is not a list (got %T)", v)
		}
		s.AvailableSlots = make([]Slot, 0, len(items))
		for _, item := range items {
			m, ok := typeutil.SafeMapStringAny(item)
			if !ok {
				s.AvailableSlots = append(s.AvailableSlots, Slot{Index: -1})
				continue
			}
			s.AvailableSlots = append(s.AvailableSlots, slotFromMap(m))
		}
	}

	if v, ok := data["selected_slot"]; ok && v != nil {
		m, ok := typeutil.SafeMapStringAny(v)
		if !ok {
			return nil, fmt.Errorf("conversation: selected_slot is not a map (got %T)", v)
		}
		sl := slotFromMap(m)
		s.SelectedSlot = &sl
	}

	return s, nil
}

func slotFromMap(m map[string]any) Slot {
	sl := Slot{
		Index:        typeutil.SafeIntDefault(m["index"], -1),
		StartDisplay: typeutil.SafeStringDefault(m["start_display"], ""),
		EndDisplay:   typeutil.SafeStringDefault(m["end_display"], ""),
	}
	if str, ok := typeutil.SafeString(m["start"]); ok {
		if t, err := time.Parse(time.RFC3339, str); err == nil {
			sl.Start = t
		}
	}
	if str, ok := typeutil.SafeString(m["end"]); ok {
		if t, err := time.Parse(time.RFC3339, str); err == nil {
			sl.End = t
		}
	}
	return sl
}
