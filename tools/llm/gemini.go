// Package llm provides the Gemini client behind the engine's LLM interface.
// The same client serves free-text generation for the dialog handlers and
// embeddings for the knowledge base.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/costcare-ai/agentcore/coreengine/observability"
	"github.com/costcare-ai/agentcore/logging"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const provider = "gemini"

// Options configures the Gemini client.
type Options struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	Temperature    float32
}

// Gemini wraps the generative-ai-go client. Safe for concurrent use.
type Gemini struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	embedder  *genai.EmbeddingModel
	modelName string
	logger    logging.Logger
}

// New creates a Gemini client. The caller owns Close.
func New(ctx context.Context, opts Options, logger logging.Logger) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("llm: missing API key")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("llm: missing model name")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("llm: create client: %w", err)
	}

	model := client.GenerativeModel(opts.Model)
	model.SetTemperature(opts.Temperature)

	g := &Gemini{
		client:    client,
		model:     model,
		modelName: opts.Model,
		logger:    logger,
	}
	if opts.EmbeddingModel != "" {
		g.embedder = client.EmbeddingModel(opts.EmbeddingModel)
	}
	return g, nil
}

// Invoke implements handlers.LLM: one prompt in, one text completion out.
func (g *Gemini) Invoke(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	durationMS := int(time.Since(start).Milliseconds())
	if err != nil {
		observability.RecordLLMCall(provider, g.modelName, "error", durationMS)
		g.logger.Error("llm_call_failed", "model", g.modelName, "error", err.Error())
		return "", fmt.Errorf("llm: generate: %w", err)
	}

	text, err := firstText(resp)
	if err != nil {
		observability.RecordLLMCall(provider, g.modelName, "error", durationMS)
		return "", err
	}

	observability.RecordLLMCall(provider, g.modelName, "success", durationMS)
	g.logger.Debug("llm_call_completed", "model", g.modelName,
		"duration_ms", durationMS, "response_length", len(text))
	return text, nil
}

// Embed returns the embedding vector for a text. Used by the knowledge base
// for both indexing and query embedding.
func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	if g.embedder == nil {
		return nil, fmt.Errorf("llm: no embedding model configured")
	}

	res, err := g.embedder.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("llm: embed: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("llm: empty embedding response")
	}
	return res.Embedding.Values, nil
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// firstText pulls the text parts out of the first candidate.
func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("llm: empty response")
	}

	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			out += string(t)
		}
	}
	if out == "" {
		return "", fmt.Errorf("llm: response contained no text parts")
	}
	return out, nil
}
