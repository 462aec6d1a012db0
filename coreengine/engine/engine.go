// Package engine provides the turn driver: the small, auditable loop that
// runs stage handlers against a conversation state according to the
// transition table, applies the recovery policy when a turn fails, and
// records per-handler metrics and traces.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
	"github.com/costcare-ai/agentcore/coreengine/handlers"
	"github.com/costcare-ai/agentcore/coreengine/observability"
	"github.com/costcare-ai/agentcore/coreengine/recovery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("agentcore/engine")

// maxHopsPerTurn bounds the handler chain within one turn. The longest legal
// chain is four hops (router, gate, extractor, slot proposal); anything past
// this indicates a transition-table bug, not a long conversation.
const maxHopsPerTurn = 8

// Driver executes one turn of the dialog per ProcessTurn call. It is safe
// for concurrent use across different states; calls for the same state must
// be serialized by the caller.
type Driver struct {
	svc      *handlers.Services
	logger   handlers.Logger
	handlers map[step]handlers.Handler
}

// New creates a Driver over the given service bundle.
func New(svc *handlers.Services) (*Driver, error) {
	if svc == nil {
		return nil, fmt.Errorf("engine: nil services")
	}
	if svc.LLM == nil {
		return nil, fmt.Errorf("engine: services missing LLM")
	}
	if svc.Knowledge == nil {
		return nil, fmt.Errorf("engine: services missing knowledge base")
	}
	if svc.Calendar == nil {
		return nil, fmt.Errorf("engine: services missing calendar")
	}
	if svc.Logger == nil {
		return nil, fmt.Errorf("engine: services missing logger")
	}

	return &Driver{
		svc:    svc,
		logger: svc.Logger,
		handlers: map[step]handlers.Handler{
			stepRouter:        handlers.NewRouter(svc),
			stepRAGQA:         handlers.NewRAGQA(svc),
			stepCheckParse:    handlers.NewCheckParse(svc),
			stepParseInfo:     handlers.NewParseInfo(svc),
			stepQualification: handlers.NewQualification(svc),
			stepSlotProposal:  handlers.NewSlotProposal(svc),
			stepConfirmation:  handlers.NewConfirmation(svc),
			stepBooking:       handlers.NewBooking(svc),
		},
	}, nil
}

// ProcessTurn appends the user message and runs handlers until the
// transition table suspends. A failed turn never surfaces as an error to the
// caller: the recovery policy repairs, rolls back or resets the state and
// the conversation continues. After a completed booking the state's booking
// fields are cleared so the next message starts fresh.
func (d *Driver) ProcessTurn(ctx context.Context, state *conversation.State, userText string) {
	ctx, span := tracer.Start(ctx, "engine.process_turn",
		trace.WithAttributes(
			attribute.String("costcare.conversation.id", state.ConversationID),
			attribute.String("costcare.stage.in", string(state.Stage)),
		),
	)
	defer span.End()

	logger := d.logger.Bind("conversation_id", state.ConversationID)
	startTime := time.Now()

	state.AppendUser(userText)
	state.ErrorMessage = ""
	snapshot := recovery.NewSnapshot(state)

	logger.Info("turn_started", "stage", state.Stage, "message_count", len(state.Messages))

	err := recovery.SafeExecute(logger, "process_turn", func() error {
		return d.runTurn(ctx, state)
	})

	durationMS := int(time.Since(startTime).Milliseconds())
	if err != nil {
		observability.RecordTurn("error", durationMS)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.recoverTurn(logger, state, snapshot, err)
	} else {
		observability.RecordTurn("success", durationMS)
		span.SetStatus(codes.Ok, "success")
	}

	if state.Stage == conversation.StageDone && state.ReadyToBook {
		logger.Info("booking_complete_resetting_state")
		state.ResetBooking()
	}

	span.SetAttributes(attribute.String("costcare.stage.out", string(state.Stage)))
	logger.Info("turn_completed", "stage", state.Stage, "duration_ms", durationMS)
}

func (d *Driver) runTurn(ctx context.Context, state *conversation.State) error {
	current := stepRouter
	for hops := 0; ; hops++ {
		if hops >= maxHopsPerTurn {
			return fmt.Errorf("transition bound exceeded after %d hops at %s", hops, current)
		}

		if err := d.runHandler(ctx, d.handlers[current], state); err != nil {
			return err
		}

		next := nextStep(current, state)
		d.logger.Debug("transition", "from", current, "to", next, "stage", state.Stage)
		if next == stepSuspend {
			return nil
		}
		current = next
	}
}

func (d *Driver) runHandler(ctx context.Context, h handlers.Handler, state *conversation.State) error {
	ctx, span := tracer.Start(ctx, "engine.handler",
		trace.WithAttributes(attribute.String("costcare.handler.name", h.Name())),
	)
	defer span.End()

	startTime := time.Now()
	err := h.Handle(ctx, state)
	durationMS := int(time.Since(startTime).Milliseconds())

	span.SetAttributes(attribute.Int("duration_ms", durationMS))
	if err != nil {
		observability.RecordHandlerExecution(h.Name(), "error", durationMS)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.Error(fmt.Sprintf("%s_error", h.Name()), "error", err.Error(), "duration_ms", durationMS)
		return fmt.Errorf("%s: %w", h.Name(), err)
	}

	observability.RecordHandlerExecution(h.Name(), "success", durationMS)
	d.logger.Debug(fmt.Sprintf("%s_completed", h.Name()), "duration_ms", durationMS, "stage", state.Stage)
	return nil
}

// recoverTurn applies the suggested recovery strategy to a state left behind
// by a failed turn. The strategy choice and the resulting stage are recorded
// on the state's ErrorMessage for the outer surface to report.
func (d *Driver) recoverTurn(logger handlers.Logger, state *conversation.State, snapshot *recovery.Snapshot, turnErr error) {
	strategy := recovery.SuggestStrategy(turnErr, state)
	observability.RecordRecovery(string(strategy))
	logger.Warn("turn_recovery", "strategy", strategy, "error", turnErr.Error())

	switch strategy {
	case recovery.StrategySanitize:
		recovery.Sanitize(state)

	case recovery.StrategyRetry:
		// Transient failure: leave the state alone, the next message will
		// re-enter the same stage.

	case recovery.StrategyRestore:
		restored := recovery.Restore(state, snapshot, recovery.RestorePreserveMessages)
		*state = *restored

	default: // reset
		fresh := conversation.New()
		fresh.ConversationID = state.ConversationID
		*state = *fresh
	}

	state.ErrorMessage = turnErr.Error()
	logger.Info("state_after_recovery", "state", state.Summary())
}
