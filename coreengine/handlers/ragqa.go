package handlers

import (
	"context"
	"fmt"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
)

const ragApology = "I apologize, but I'm having trouble accessing the information right now. " +
	"Would you like to book a meeting with our team instead?"

// RAGQA answers a general question from the knowledge base. The turn always
// ends after this handler: any failure along the way degrades to a fixed
// apology rather than an error.
type RAGQA struct {
	svc *Services
}

// NewRAGQA creates the question-answering handler.
func NewRAGQA(svc *Services) *RAGQA {
	return &RAGQA{svc: svc}
}

func (h *RAGQA) Name() string { return "rag_qa" }

func (h *RAGQA) Handle(ctx context.Context, state *conversation.State) error {
	defer func() { state.Stage = conversation.StageDone }()

	msg, ok := state.LastMessage()
	if !ok {
		return nil
	}
	question := msg.Text

	kbContext, err := h.svc.Knowledge.Search(ctx, question, h.svc.topK())
	if err != nil {
		h.svc.Logger.Error("rag_search_failed", "error", err.Error())
		state.AppendAssistant(ragApology)
		return nil
	}
	state.RAGContext = kbContext

	prompt := fmt.Sprintf(`%s

%s

Context from knowledge base:
---
%s
---

User question: %s

Provide a helpful, accurate answer based on the context above:`,
		h.svc.prompt(PromptSystem), h.svc.prompt(PromptRAG), kbContext, question)

	answer, err := h.svc.LLM.Invoke(ctx, prompt)
	if err != nil {
		h.svc.Logger.Error("rag_generation_failed", "error", err.Error())
		state.AppendAssistant(ragApology)
		return nil
	}

	state.AppendAssistant(answer)
	h.svc.Logger.Info("rag_response_generated", "answer_length", len(answer))
	return nil
}
