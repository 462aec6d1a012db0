package handlers

import (
	"os"
	"path/filepath"
	"strings"
)

// Prompt registry keys.
const (
	PromptSystem  = "system_prompt"
	PromptRAG     = "rag_prompt"
	PromptBooking = "booking_prompt"
)

var defaultPrompts = map[string]string{
	PromptSystem: "You are a friendly booking assistant for the CostCare team. " +
		"You answer questions about the company and help visitors book a meeting. " +
		"Keep replies short, warm and concrete.",
	PromptRAG: "Answer the user's question using only the provided context. " +
		"If the context does not cover the question, say so and offer to book a call with the team.",
	PromptBooking: "You are collecting the details needed to book a meeting: the visitor's name, " +
		"email address and preferred date or time. Ask only for what is still missing.",
}

// Prompts resolves prompt text by key. Compiled-in defaults can be overridden
// by dropping a <key>.md file into the configured directory; files are read
// on every lookup so edits take effect without a restart.
type Prompts struct {
	dir    string
	logger Logger
}

// NewPrompts creates a registry. dir may be empty, in which case only the
// defaults are served.
func NewPrompts(dir string, logger Logger) *Prompts {
	return &Prompts{dir: dir, logger: logger}
}

// Get implements PromptRegistry. Unknown keys with no override file yield "".
func (p *Prompts) Get(key string) string {
	if p.dir != "" {
		path := filepath.Join(p.dir, key+".md")
		data, err := os.ReadFile(path)
		if err == nil {
			return strings.TrimSpace(string(data))
		}
		if !os.IsNotExist(err) && p.logger != nil {
			p.logger.Warn("prompt_read_failed", "key", key, "path", path, "error", err.Error())
		}
	}
	return defaultPrompts[key]
}
