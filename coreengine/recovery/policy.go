package recovery

import (
	"strings"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
)

// =============================================================================
// Error classification and recovery policy
// =============================================================================

// transientPatterns mark failures worth retrying: timeouts, throttling and
// network-level trouble from the LLM, calendar or knowledge-base backends.
var transientPatterns = []string{
	"timeout",
	"rate limit",
	"temporarily",
	"temporary",
	"unavailable",
	"connection",
	"network",
	"502",
	"503",
	"504",
}

// IsTransient reports whether the error looks like a transient external
// failure. Matching is by lowercase substring over the error text.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// Strategy is the recovery action suggested after a failed turn.
type Strategy string

const (
	// StrategySanitize repairs invariant violations in place.
	StrategySanitize Strategy = "sanitize"
	// StrategyRetry leaves the state alone; the failure should pass on retry.
	StrategyRetry Strategy = "retry"
	// StrategyRestore rolls back to the pre-turn snapshot, keeping messages.
	StrategyRestore Strategy = "restore"
	// StrategyReset starts the conversation over.
	StrategyReset Strategy = "reset"
)

// SuggestStrategy picks a recovery action for a failed turn. Precedence:
// an invalid state is sanitized before anything else, transient failures are
// retried, conversations with history worth keeping are restored, and
// anything else starts over.
func SuggestStrategy(err error, s *conversation.State) Strategy {
	if len(Validate(s)) > 0 {
		return StrategySanitize
	}
	if IsTransient(err) {
		return StrategyRetry
	}
	if len(s.Messages) > 2 {
		return StrategyRestore
	}
	return StrategyReset
}
