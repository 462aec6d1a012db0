package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	s := New()

	assert.NotEmpty(t, s.ConversationID)
	assert.Contains(t, s.ConversationID, "conv_")
	assert.Equal(t, StageGreeting, s.Stage)
	assert.Empty(t, s.Messages)
	assert.Empty(t, s.AvailableSlots)
	assert.Nil(t, s.SelectedSlot)
	assert.False(t, s.ReadyToBook)
	assert.False(t, s.NeedsRAG)
}

func TestStageValid(t *testing.T) {
	for _, st := range []Stage{StageGreeting, StageRAGQA, StageQualification,
		StageSlotProposal, StageConfirmation, StageBooking, StageDone} {
		assert.True(t, st.Valid(), "stage %s", st)
	}
	assert.False(t, Stage("booking_wizard").Valid())
	assert.False(t, Stage("").Valid())
}

func TestTranscriptHelpers(t *testing.T) {
	s := New()
	_, ok := s.LastMessage()
	assert.False(t, ok)

	s.AppendUser("hello")
	s.AppendAssistant("hi there")

	last, ok := s.LastMessage()
	require.True(t, ok)
	assert.Equal(t, RoleAssistant, last.Role)
	assert.Equal(t, "hi there", last.Text)

	lastUser, ok := s.LastUserMessage()
	require.True(t, ok)
	assert.Equal(t, "hello", lastUser.Text)
}

func TestMissingFields(t *testing.T) {
	s := New()
	assert.Equal(t, []string{"name", "email", "preferred date/time"}, s.MissingFields())
	assert.False(t, s.HasPartialBooking())

	s.UserName = "Denis"
	assert.True(t, s.HasPartialBooking())
	assert.Equal(t, []string{"email", "preferred date/time"}, s.MissingFields())

	s.UserEmail = "denis@example.com"
	s.PreferredDate = "tomorrow afternoon"
	assert.Empty(t, s.MissingFields())
	assert.True(t, s.BookingFieldsComplete())
}

func TestCloneIsDeep(t *testing.T) {
	s := New()
	s.AppendUser("book a meeting")
	s.UserName = "Denis"
	s.AvailableSlots = []Slot{{Index: 0, Start: time.Now(), StartDisplay: "02:00 PM"}}
	sel := s.AvailableSlots[0]
	s.SelectedSlot = &sel

	clone := s.Clone()

	// Mutate the original in every sharable field.
	s.AppendUser("second message")
	s.Messages[0].Text = "mutated"
	s.AvailableSlots[0].StartDisplay = "mutated"
	s.SelectedSlot.StartDisplay = "mutated"
	s.UserName = "Other"

	assert.Len(t, clone.Messages, 1)
	assert.Equal(t, "book a meeting", clone.Messages[0].Text)
	assert.Equal(t, "02:00 PM", clone.AvailableSlots[0].StartDisplay)
	assert.Equal(t, "02:00 PM", clone.SelectedSlot.StartDisplay)
	assert.Equal(t, "Denis", clone.UserName)
}

func TestResetBookingPreservesTranscript(t *testing.T) {
	s := New()
	s.AppendUser("book a meeting")
	s.AppendAssistant("confirmed")
	s.UserName = "Denis"
	s.UserEmail = "denis@example.com"
	s.PreferredDate = "tomorrow"
	s.SelectedSlot = &Slot{Index: 0}
	s.ReadyToBook = true
	s.Stage = StageDone

	s.ResetBooking()

	assert.Len(t, s.Messages, 2)
	assert.Equal(t, StageGreeting, s.Stage)
	assert.Empty(t, s.UserName)
	assert.Empty(t, s.UserEmail)
	assert.Empty(t, s.PreferredDate)
	assert.Nil(t, s.SelectedSlot)
	assert.Empty(t, s.AvailableSlots)
	assert.False(t, s.ReadyToBook)
}

func TestMapRoundTrip(t *testing.T) {
	s := New()
	s.AppendUser("i want to book")
	s.AppendAssistant("sure, what's your name?")
	s.Stage = StageQualification
	s.UserName = "Denis"
	s.UserEmail = "denis@example.com"
	s.PreferredDate = "tomorrow afternoon"
	start := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	s.AvailableSlots = []Slot{{Index: 0, Start: start, End: start.Add(30 * time.Minute), StartDisplay: "02:00 PM", EndDisplay: "02:30 PM"}}
	sel := s.AvailableSlots[0]
	s.SelectedSlot = &sel
	s.ReadyToBook = true

	restored, err := FromMap(s.ToMap())
	require.NoError(t, err)

	assert.Equal(t, s.ConversationID, restored.ConversationID)
	assert.Equal(t, s.Stage, restored.Stage)
	assert.Equal(t, s.Messages, restored.Messages)
	assert.Equal(t, s.UserName, restored.UserName)
	require.Len(t, restored.AvailableSlots, 1)
	assert.True(t, restored.AvailableSlots[0].Start.Equal(start))
	require.NotNil(t, restored.SelectedSlot)
	assert.Equal(t, "02:00 PM", restored.SelectedSlot.StartDisplay)
	assert.True(t, restored.ReadyToBook)
}

func TestFromMapRejectsCorruptContainers(t *testing.T) {
	_, err := FromMap(map[string]any{"messages": "not a list"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "messages is not a list")

	_, err = FromMap(map[string]any{"available_slots": 42})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available_slots is not a list")

	_, err = FromMap(map[string]any{"selected_slot": "tomorrow"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selected_slot is not a map")

	_, err = FromMap(nil)
	require.Error(t, err)
}

func TestFromMapToleratesScalarGarbage(t *testing.T) {
	s, err := FromMap(map[string]any{
		"stage":     "warp_drive",
		"user_name": 42,
		"messages": []any{
			map[string]any{"role": "user", "text": "hi"},
			"not a message",
		},
	})
	require.NoError(t, err)

	// Value-level problems survive FromMap for the validator to flag.
	assert.Equal(t, Stage("warp_drive"), s.Stage)
	assert.Empty(t, s.UserName)
	require.Len(t, s.Messages, 2)
	assert.Equal(t, "hi", s.Messages[0].Text)
	assert.Empty(t, s.Messages[1].Role)
}

func TestSummary(t *testing.T) {
	s := New()
	s.AppendUser("hello")
	s.UserName = "Denis"

	sum := s.Summary()
	assert.Equal(t, "greeting", sum["stage"])
	assert.Equal(t, 1, sum["message_count"])
	assert.Equal(t, true, sum["has_name"])
	assert.Equal(t, false, sum["has_email"])
}
