package handlers

import (
	"context"
	"strings"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
)

// bookingKeywords signal booking intent, English and Russian.
var bookingKeywords = []string{
	"book",
	"schedule",
	"meeting",
	"appointment",
	"call",
	"demo",
	"talk",
	"speak",
	"discuss",
	"reserve",
	"calendar",
	"arrange",
	"забронируй",
	"забронировать",
	"бронируй",
	"бронировать",
	"встреча",
	"митинг",
	"созвон",
	"звонок",
	"назначить",
	"планировать",
	"запланировать",
	"договориться",
	"календарь",
	"расписание",
	"слот",
	"тайм",
	"слоты",
	"слота",
}

// questionIndicators signal a general question best served from the
// knowledge base.
var questionIndicators = []string{
	"what",
	"how",
	"when",
	"where",
	"who",
	"why",
	"?",
	"tell me",
	"explain",
	"что",
	"как",
	"когда",
	"где",
	"кто",
	"почему",
	"расскажи",
	"объясни",
	"покажи",
}

// Router classifies the incoming user message and sets the stage for the
// rest of the turn. It never talks to external services.
type Router struct {
	svc *Services
}

// NewRouter creates the router handler.
func NewRouter(svc *Services) *Router {
	return &Router{svc: svc}
}

func (r *Router) Name() string { return "router" }

// Handle routes the turn. An in-progress booking always wins over message
// content: once any booking field or a slot list exists, the flow continues
// at qualification regardless of what the user wrote.
func (r *Router) Handle(ctx context.Context, state *conversation.State) error {
	if len(state.Messages) == 0 {
		state.Stage = conversation.StageGreeting
		return nil
	}

	if state.HasPartialBooking() || len(state.AvailableSlots) > 0 {
		r.svc.Logger.Debug("router_continuing_booking", "stage", conversation.StageQualification)
		state.Stage = conversation.StageQualification
		return nil
	}

	last := strings.ToLower(state.Messages[len(state.Messages)-1].Text)

	for _, keyword := range bookingKeywords {
		if strings.Contains(last, keyword) {
			r.svc.Logger.Debug("router_booking_intent", "keyword", keyword)
			state.Stage = conversation.StageQualification
			return nil
		}
	}

	for _, indicator := range questionIndicators {
		if strings.Contains(last, indicator) {
			state.NeedsRAG = true
			state.Stage = conversation.StageRAGQA
			return nil
		}
	}

	// Anything unrecognized is treated as a question.
	state.Stage = conversation.StageRAGQA
	return nil
}
