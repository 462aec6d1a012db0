package handlers_test

import (
	"context"
	"testing"
	"time"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
	"github.com/costcare-ai/agentcore/coreengine/handlers"
	"github.com/costcare-ai/agentcore/coreengine/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)

func newRouter(t *testing.T) *handlers.Router {
	t.Helper()
	svc, _, _, _ := testutil.NewServices(testNow)
	return handlers.NewRouter(svc)
}

func routeMessage(t *testing.T, text string) *conversation.State {
	t.Helper()
	s := conversation.New()
	s.AppendUser(text)
	require.NoError(t, newRouter(t).Handle(context.Background(), s))
	return s
}

func TestRouterEmptyConversation(t *testing.T) {
	s := conversation.New()
	require.NoError(t, newRouter(t).Handle(context.Background(), s))
	assert.Equal(t, conversation.StageGreeting, s.Stage)
}

func TestRouterBookingKeywords(t *testing.T) {
	for _, text := range []string{
		"I'd like to book a demo",
		"can we schedule something",
		"let's arrange a call",
		"Забронируй слот на завтра",
	} {
		s := routeMessage(t, text)
		assert.Equal(t, conversation.StageQualification, s.Stage, "message %q", text)
		assert.False(t, s.NeedsRAG, "message %q", text)
	}
}

func TestRouterQuestions(t *testing.T) {
	for _, text := range []string{
		"What does CostCare do?",
		"tell me about your pricing",
		"Расскажи про компанию",
		"is this a real product?",
	} {
		s := routeMessage(t, text)
		assert.Equal(t, conversation.StageRAGQA, s.Stage, "message %q", text)
		assert.True(t, s.NeedsRAG, "message %q", text)
	}
}

func TestRouterDefaultIsQuestion(t *testing.T) {
	s := routeMessage(t, "hello there")
	assert.Equal(t, conversation.StageRAGQA, s.Stage)
	assert.False(t, s.NeedsRAG)
}

func TestRouterPartialBookingWins(t *testing.T) {
	// Once a booking is in flight, message content no longer matters.
	s := conversation.New()
	s.UserEmail = "denis@example.com"
	s.AppendUser("what is your pricing?")

	require.NoError(t, newRouter(t).Handle(context.Background(), s))
	assert.Equal(t, conversation.StageQualification, s.Stage)
	assert.False(t, s.NeedsRAG)
}

func TestRouterProposedSlotsWin(t *testing.T) {
	s := testutil.StateWithSlots(3, testNow.AddDate(0, 0, 1))
	s.UserName, s.UserEmail, s.PreferredDate = "", "", ""
	s.AppendUser("why though")

	require.NoError(t, newRouter(t).Handle(context.Background(), s))
	assert.Equal(t, conversation.StageQualification, s.Stage)
}
