package handlers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
	"github.com/costcare-ai/agentcore/coreengine/handlers"
	"github.com/costcare-ai/agentcore/coreengine/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualificationAsksForMissingFields(t *testing.T) {
	svc, llm, _, _ := testutil.NewServices(testNow)
	llm.DefaultResponse = "Could I get your name and email?"

	s := conversation.New()
	s.PreferredDate = "tomorrow"
	s.AppendUser("I want to book a demo tomorrow")

	require.NoError(t, handlers.NewQualification(svc).Handle(context.Background(), s))

	assert.Equal(t, conversation.StageQualification, s.Stage)
	last, _ := s.LastMessage()
	assert.Equal(t, conversation.RoleAssistant, last.Role)
	assert.Equal(t, "Could I get your name and email?", last.Text)

	require.Equal(t, 1, llm.CallCount())
	assert.Contains(t, llm.Calls[0], "Missing information: name, email")
	assert.Contains(t, llm.Calls[0], "Preferred time: tomorrow")
	assert.Contains(t, llm.Calls[0], "Name: Not provided")
}

func TestQualificationCompleteAdvancesSilently(t *testing.T) {
	svc, llm, _, _ := testutil.NewServices(testNow)

	s := conversation.New()
	s.UserName = "Denis"
	s.UserEmail = "denis@example.com"
	s.PreferredDate = "tomorrow"
	s.AppendUser("tomorrow please")

	require.NoError(t, handlers.NewQualification(svc).Handle(context.Background(), s))

	assert.Equal(t, conversation.StageSlotProposal, s.Stage)
	assert.Equal(t, 0, llm.CallCount())
	last, _ := s.LastMessage()
	assert.Equal(t, conversation.RoleUser, last.Role)
}

func TestQualificationFallbackOnLLMFailure(t *testing.T) {
	svc, llm, _, _ := testutil.NewServices(testNow)
	llm.WithError(errors.New("model overloaded"))

	s := conversation.New()
	s.AppendUser("book me in")

	require.NoError(t, handlers.NewQualification(svc).Handle(context.Background(), s))

	last, _ := s.LastMessage()
	assert.Contains(t, last.Text, "Could you share your name, email, and preferred time?")
	assert.Equal(t, conversation.StageQualification, s.Stage)
}
