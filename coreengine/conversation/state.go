// Package conversation provides the ConversationState - the single aggregate
// the booking dialog operates on.
//
// One State exists per conversation. Exactly one stage handler reads and
// mutates it per processing hop, so no internal synchronization is needed;
// concurrent conversations each own an independent State.
//
// Design:
//   - Messages: append-only transcript of user/assistant turns
//   - Stage tracking uses typed string constants, not an enum type from codegen
//   - Booking fields are set once extracted and cleared only by explicit reset
package conversation

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Stages
// =============================================================================

// Stage identifies the dialog stage a conversation is in.
type Stage string

const (
	// StageGreeting is the initial stage before any routing decision.
	StageGreeting Stage = "greeting"
	// StageRAGQA answers a general question from the knowledge base.
	StageRAGQA Stage = "rag_qa"
	// StageQualification collects missing booking fields from the user.
	StageQualification Stage = "qualification"
	// StageSlotProposal proposes available calendar slots.
	StageSlotProposal Stage = "slot_proposal"
	// StageConfirmation awaits slot selection and yes/no confirmation.
	StageConfirmation Stage = "confirmation"
	// StageBooking performs the calendar insert.
	StageBooking Stage = "booking"
	// StageDone marks the turn's flow as finished.
	StageDone Stage = "done"
)

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageGreeting, StageRAGQA, StageQualification, StageSlotProposal,
		StageConfirmation, StageBooking, StageDone:
		return true
	}
	return false
}

// =============================================================================
// Messages and slots
// =============================================================================

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single transcript entry.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Slot is one proposed meeting slot. Index is the zero-based position in the
// proposal list; users refer to slots by Index+1 ("the 2nd one").
type Slot struct {
	Index        int       `json:"index"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	StartDisplay string    `json:"start_display"`
	EndDisplay   string    `json:"end_display"`
}

// Clone returns a copy of the slot.
func (s *Slot) Clone() *Slot {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// State is the conversation aggregate.
type State struct {
	// Identification
	ConversationID string `json:"conversation_id"`

	// Transcript
	Messages []Message `json:"messages"`

	// Dialog position
	Stage Stage `json:"stage"`

	// Booking fields (set once extracted, cleared only by explicit reset)
	UserName      string `json:"user_name"`
	UserEmail     string `json:"user_email"`
	PreferredDate string `json:"preferred_date"`

	// Slot proposal state
	AvailableSlots []Slot `json:"available_slots"`
	SelectedSlot   *Slot  `json:"selected_slot,omitempty"`

	// Control flags
	NeedsRAG    bool `json:"needs_rag"`
	ReadyToBook bool `json:"ready_to_book"`
	SkipParse   bool `json:"skip_parse"`

	// Last retrieval context and last recoverable error, informational only
	RAGContext   string `json:"rag_context"`
	ErrorMessage string `json:"error_message,omitempty"`

	// Timing
	CreatedAt time.Time `json:"created_at"`
}

// New creates an empty State at the greeting stage.
func New() *State {
	return &State{
		ConversationID: "conv_" + uuid.New().String()[:16],
		Messages:       []Message{},
		Stage:          StageGreeting,
		AvailableSlots: []Slot{},
		CreatedAt:      time.Now().UTC(),
	}
}

// =============================================================================
// Transcript helpers
// =============================================================================

// AppendUser appends a user message to the transcript.
func (s *State) AppendUser(text string) {
	s.Messages = append(s.Messages, Message{Role: RoleUser, Text: text})
}

// AppendAssistant appends an assistant message to the transcript.
func (s *State) AppendAssistant(text string) {
	s.Messages = append(s.Messages, Message{Role: RoleAssistant, Text: text})
}

// LastMessage returns the most recent transcript entry.
func (s *State) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// LastUserMessage returns the most recent user-authored entry.
func (s *State) LastUserMessage() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// =============================================================================
// Booking field helpers
// =============================================================================

// HasPartialBooking reports whether any booking field has been collected.
func (s *State) HasPartialBooking() bool {
	return s.UserName != "" || s.UserEmail != "" || s.PreferredDate != ""
}

// MissingFields lists the booking fields still to collect, in prompt order.
func (s *State) MissingFields() []string {
	var missing []string
	if s.UserName == "" {
		missing = append(missing, "name")
	}
	if s.UserEmail == "" {
		missing = append(missing, "email")
	}
	if s.PreferredDate == "" {
		missing = append(missing, "preferred date/time")
	}
	return missing
}

// BookingFieldsComplete reports whether name, email and preferred date are all set.
func (s *State) BookingFieldsComplete() bool {
	return s.UserName != "" && s.UserEmail != "" && s.PreferredDate != ""
}

// ResetBooking clears all booking progress and returns the conversation to the
// greeting stage. The transcript is preserved.
func (s *State) ResetBooking() {
	s.UserName = ""
	s.UserEmail = ""
	s.PreferredDate = ""
	s.AvailableSlots = []Slot{}
	s.SelectedSlot = nil
	s.NeedsRAG = false
	s.ReadyToBook = false
	s.SkipParse = false
	s.RAGContext = ""
	s.ErrorMessage = ""
	s.Stage = StageGreeting
}

// =============================================================================
// Clone - deep copy for snapshots and rollback
// =============================================================================

// Clone creates a deep copy of the state. Mutating the original afterwards
// never changes the clone.
func (s *State) Clone() *State {
	clone := &State{
		ConversationID: s.ConversationID,
		Stage:          s.Stage,
		UserName:       s.UserName,
		UserEmail:      s.UserEmail,
		PreferredDate:  s.PreferredDate,
		NeedsRAG:       s.NeedsRAG,
		ReadyToBook:    s.ReadyToBook,
		SkipParse:      s.SkipParse,
		RAGContext:     s.RAGContext,
		ErrorMessage:   s.ErrorMessage,
		CreatedAt:      s.CreatedAt,
	}

	clone.Messages = copyMessages(s.Messages)
	clone.AvailableSlots = copySlots(s.AvailableSlots)
	clone.SelectedSlot = s.SelectedSlot.Clone()

	return clone
}

func copyMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	result := make([]Message, len(msgs))
	copy(result, msgs)
	return result
}

func copySlots(slots []Slot) []Slot {
	if slots == nil {
		return nil
	}
	result := make([]Slot, len(slots))
	copy(result, slots)
	return result
}

// =============================================================================
// Debug summary
// =============================================================================

// Summary returns a lightweight snapshot of the state for logging.
// It never includes full message bodies.
func (s *State) Summary() map[string]any {
	selected := ""
	if s.SelectedSlot != nil {
		selected = s.SelectedSlot.StartDisplay
	}
	return map[string]any{
		"conversation_id": s.ConversationID,
		"stage":           string(s.Stage),
		"message_count":   len(s.Messages),
		"has_name":        s.UserName != "",
		"has_email":       s.UserEmail != "",
		"has_date":        s.PreferredDate != "",
		"slot_count":      len(s.AvailableSlots),
		"selected_slot":   selected,
		"ready_to_book":   s.ReadyToBook,
	}
}
