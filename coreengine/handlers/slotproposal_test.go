package handlers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
	"github.com/costcare-ai/agentcore/coreengine/handlers"
	"github.com/costcare-ai/agentcore/coreengine/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotProposalOffersCappedSlots(t *testing.T) {
	// The mock calendar has seven free windows; the proposal caps at five.
	svc, _, _, _ := testutil.NewServices(testNow)

	s := conversation.New()
	s.UserName = "Denis"
	s.UserEmail = "denis@example.com"
	s.PreferredDate = "tomorrow afternoon"
	s.AppendUser("tomorrow afternoon works")

	require.NoError(t, handlers.NewSlotProposal(svc).Handle(context.Background(), s))

	require.Len(t, s.AvailableSlots, 5)
	assert.Equal(t, conversation.StageConfirmation, s.Stage)
	for i, slot := range s.AvailableSlots {
		assert.Equal(t, i, slot.Index)
		assert.NotEmpty(t, slot.StartDisplay)
		assert.NotEmpty(t, slot.EndDisplay)
	}
	last, _ := s.LastMessage()
	assert.Equal(t, conversation.RoleAssistant, last.Role)
}

func TestSlotProposalDisplayFormat(t *testing.T) {
	svc, _, _, cal := testutil.NewServices(testNow)
	start := time.Date(2026, 9, 3, 14, 0, 0, 0, time.UTC)
	cal.Windows = []handlers.Window{{Start: start, End: start.Add(30 * time.Minute)}}

	s := conversation.New()
	s.PreferredDate = "tomorrow afternoon"
	s.AppendUser("tomorrow afternoon")

	require.NoError(t, handlers.NewSlotProposal(svc).Handle(context.Background(), s))

	require.Len(t, s.AvailableSlots, 1)
	assert.Equal(t, "02:00 PM", s.AvailableSlots[0].StartDisplay)
	assert.Equal(t, "02:30 PM", s.AvailableSlots[0].EndDisplay)
}

func TestSlotProposalRespectsMaxSlots(t *testing.T) {
	svc, _, _, _ := testutil.NewServices(testNow)
	svc.MaxSlots = 2

	s := conversation.New()
	s.PreferredDate = "tomorrow"
	s.AppendUser("tomorrow")

	require.NoError(t, handlers.NewSlotProposal(svc).Handle(context.Background(), s))
	assert.Len(t, s.AvailableSlots, 2)
}

func TestSlotProposalNoAvailability(t *testing.T) {
	svc, llm, _, cal := testutil.NewServices(testNow)
	cal.Windows = nil
	llm.WithError(errors.New("model overloaded")) // force the fixed fallback text

	s := conversation.New()
	s.PreferredDate = "friday evening"
	s.AppendUser("friday evening")

	require.NoError(t, handlers.NewSlotProposal(svc).Handle(context.Background(), s))

	assert.Empty(t, s.AvailableSlots)
	assert.Equal(t, conversation.StageQualification, s.Stage)
	last, _ := s.LastMessage()
	assert.Contains(t, last.Text, "I don't see any available slots for friday evening")
}

func TestSlotProposalCalendarFailureReadsAsNoAvailability(t *testing.T) {
	svc, _, _, cal := testutil.NewServices(testNow)
	cal.AvailabilityError = errors.New("calendar API 500")

	s := conversation.New()
	s.PreferredDate = "tomorrow"
	s.AppendUser("tomorrow")

	require.NoError(t, handlers.NewSlotProposal(svc).Handle(context.Background(), s))

	assert.Empty(t, s.AvailableSlots)
	assert.Equal(t, conversation.StageQualification, s.Stage)
	last, _ := s.LastMessage()
	assert.Equal(t, conversation.RoleAssistant, last.Role)
	assert.NotContains(t, last.Text, "500")
}

func TestSlotProposalDefaultsToTomorrow(t *testing.T) {
	svc, llm, _, _ := testutil.NewServices(testNow)

	s := conversation.New()
	s.AppendUser("whenever")

	require.NoError(t, handlers.NewSlotProposal(svc).Handle(context.Background(), s))
	require.Equal(t, 1, llm.CallCount())
	assert.NotEmpty(t, s.AvailableSlots)
}
