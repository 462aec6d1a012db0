package recovery

import (
	"errors"
	"fmt"
	"testing"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	transient := []error{
		errors.New("context deadline exceeded: timeout"),
		errors.New("429 rate limit exceeded"),
		errors.New("service temporarily unavailable"),
		errors.New("connection refused"),
		errors.New("network is unreachable"),
		fmt.Errorf("upstream returned 503"),
	}
	for _, err := range transient {
		assert.True(t, IsTransient(err), "expected transient: %v", err)
	}

	assert.False(t, IsTransient(errors.New("invalid credentials")))
	assert.False(t, IsTransient(errors.New("no valid JSON object found in response")))
	assert.False(t, IsTransient(nil))
}

func TestSuggestStrategyPrecedence(t *testing.T) {
	// Invalid state wins over everything, including transient errors.
	broken := conversation.New()
	broken.Stage = conversation.Stage("warp_drive")
	assert.Equal(t, StrategySanitize, SuggestStrategy(errors.New("timeout"), broken))

	// Transient error on a valid state means retry.
	valid := conversation.New()
	assert.Equal(t, StrategyRetry, SuggestStrategy(errors.New("connection reset"), valid))

	// Non-transient with history worth keeping means restore.
	chatty := conversation.New()
	chatty.AppendUser("hi")
	chatty.AppendAssistant("hello")
	chatty.AppendUser("book a meeting")
	assert.Equal(t, StrategyRestore, SuggestStrategy(errors.New("boom"), chatty))

	// Non-transient early in the conversation means reset.
	fresh := conversation.New()
	fresh.AppendUser("hi")
	assert.Equal(t, StrategyReset, SuggestStrategy(errors.New("boom"), fresh))
}

func TestSafeExecuteRecoversPanic(t *testing.T) {
	err := SafeExecute(nil, "explode", func() error {
		panic("kaboom")
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "panic in explode")

	err = SafeExecute(nil, "fine", func() error { return nil })
	assert.NoError(t, err)
}

func TestSafeExecuteWithResult(t *testing.T) {
	v, err := SafeExecuteWithResult(nil, "ok", func() (int, error) { return 42, nil })
	assert.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = SafeExecuteWithResult(nil, "explode", func() (int, error) { panic("kaboom") })
	assert.Error(t, err)
}
