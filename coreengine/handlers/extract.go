package handlers

import (
	"encoding/json"
	"fmt"
	"strings"
)

// dateVocabulary are the time words that disqualify a bare message from
// being taken as a name by the extraction fallback.
var dateVocabulary = []string{
	"tomorrow", "today", "next", "week", "morning", "afternoon", "evening",
}

func extractionPrompt(userMessage, missingHint, contextHint string) string {
	return fmt.Sprintf(`You are extracting booking information from a user message. We are in the middle of a booking conversation.%s%s

User message: %q

Return ONLY a valid JSON object with these exact fields:
{
  "name": "user's name (first name is fine, can be short like 'John', 'Denis', 'Dni', etc.) or null",
  "email": "user's email address (must contain @) or null",
  "preferred_date": "date preference like 'tomorrow afternoon', 'next week', etc. or null"
}

Rules:
- If the message looks like a name (even a short one), extract it as name
- If the message contains @, it's an email
- If the message contains time/day words (tomorrow, next week, etc.), it's a date preference

Return ONLY the JSON, no other text:`, missingHint, contextHint, userMessage)
}

// extractJSON pulls the first brace-balanced JSON object out of model output.
// Tries a direct parse first; model chatter around the object is tolerated.
func extractJSON(text string) (map[string]any, error) {
	var result map[string]any
	if err := json.Unmarshal([]byte(text), &result); err == nil {
		return result, nil
	}

	start := -1
	braceCount := 0
	for i, c := range text {
		if c == '{' {
			if start == -1 {
				start = i
			}
			braceCount++
		} else if c == '}' {
			braceCount--
			if braceCount == 0 && start != -1 {
				jsonStr := text[start : i+1]
				if err := json.Unmarshal([]byte(jsonStr), &result); err == nil {
					return result, nil
				}
			}
		}
	}

	return nil, fmt.Errorf("no valid JSON object found in response")
}

// looksLikeName is the extraction fallback check: a short bare reply with no
// @ and no date vocabulary is accepted as a name verbatim.
func looksLikeName(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.Contains(trimmed, "@") {
		return false
	}
	if len(trimmed) <= 1 || len(trimmed) >= 50 {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, word := range dateVocabulary {
		if strings.Contains(lower, word) {
			return false
		}
	}
	return true
}
