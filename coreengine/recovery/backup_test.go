package recovery

import (
	"testing"
	"time"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingState() *conversation.State {
	s := conversation.New()
	s.AppendUser("book a meeting tomorrow")
	s.AppendAssistant("what's your name?")
	s.UserName = "Denis"
	s.UserEmail = "denis@example.com"
	s.PreferredDate = "tomorrow afternoon"
	s.Stage = conversation.StageConfirmation
	start := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	s.AvailableSlots = []conversation.Slot{
		{Index: 0, Start: start, End: start.Add(30 * time.Minute), StartDisplay: "02:00 PM", EndDisplay: "02:30 PM"},
	}
	sel := s.AvailableSlots[0]
	s.SelectedSlot = &sel
	return s
}

func TestSnapshotIsImmutable(t *testing.T) {
	s := bookingState()
	snap := NewSnapshot(s)

	assert.Contains(t, snap.ID, "bak_")
	assert.Equal(t, conversation.StageConfirmation, snap.Stage)
	assert.Equal(t, 2, snap.MessageCount)

	// Mutations after the snapshot never leak into it.
	s.AppendUser("actually, wait")
	s.UserName = "Other"
	s.SelectedSlot.StartDisplay = "mutated"
	s.AvailableSlots[0].StartDisplay = "mutated"

	assert.Len(t, snap.State.Messages, 2)
	assert.Equal(t, "Denis", snap.State.UserName)
	assert.Equal(t, "02:00 PM", snap.State.SelectedSlot.StartDisplay)
	assert.Equal(t, "02:00 PM", snap.State.AvailableSlots[0].StartDisplay)
}

func TestRestoreFull(t *testing.T) {
	s := bookingState()
	snap := NewSnapshot(s)

	s.AppendUser("garbage turn")
	s.UserName = ""
	s.Stage = conversation.Stage("broken")

	restored := Restore(s, snap, RestoreFull)

	assert.Equal(t, "Denis", restored.UserName)
	assert.Equal(t, conversation.StageConfirmation, restored.Stage)
	assert.Len(t, restored.Messages, 2)
}

func TestRestorePreserveMessages(t *testing.T) {
	s := bookingState()
	snap := NewSnapshot(s)

	// The live turn added messages but corrupted the booking fields.
	s.AppendUser("one more thing")
	s.AppendAssistant("hmm")
	s.UserEmail = ""
	s.Stage = conversation.StageGreeting

	restored := Restore(s, snap, RestorePreserveMessages)

	// Live transcript kept, everything else from the snapshot.
	assert.Len(t, restored.Messages, 4)
	assert.Equal(t, "one more thing", restored.Messages[2].Text)
	assert.Equal(t, "denis@example.com", restored.UserEmail)
	assert.Equal(t, conversation.StageConfirmation, restored.Stage)
	require.NotNil(t, restored.SelectedSlot)
}

func TestRestorePreserveMessagesEmptyTranscript(t *testing.T) {
	s := bookingState()
	snap := NewSnapshot(s)
	s.Messages = nil

	restored := Restore(s, snap, RestorePreserveMessages)
	assert.Len(t, restored.Messages, 2)
}

func TestRestoreMerge(t *testing.T) {
	s := bookingState()
	snap := NewSnapshot(s)

	// Live state lost some fields but gained a new stage and name.
	s.UserEmail = ""
	s.PreferredDate = ""
	s.SelectedSlot = nil
	s.UserName = "Denys"
	s.Stage = conversation.StageQualification

	restored := Restore(s, snap, RestoreMerge)

	// Only empty fields are filled; live values and stage are kept.
	assert.Equal(t, "Denys", restored.UserName)
	assert.Equal(t, "denis@example.com", restored.UserEmail)
	assert.Equal(t, "tomorrow afternoon", restored.PreferredDate)
	require.NotNil(t, restored.SelectedSlot)
	assert.Equal(t, conversation.StageQualification, restored.Stage)
}

func TestRestoreUnknownStrategyFallsBackToFull(t *testing.T) {
	s := bookingState()
	snap := NewSnapshot(s)
	s.UserName = ""

	restored := Restore(s, snap, RestoreStrategy("yolo"))
	assert.Equal(t, "Denis", restored.UserName)
}

func TestRestoreDoesNotMutateInputs(t *testing.T) {
	s := bookingState()
	snap := NewSnapshot(s)
	s.UserName = "Live"

	_ = Restore(s, snap, RestoreMerge)
	_ = Restore(s, snap, RestorePreserveMessages)

	assert.Equal(t, "Live", s.UserName)
	assert.Equal(t, "Denis", snap.State.UserName)
}
