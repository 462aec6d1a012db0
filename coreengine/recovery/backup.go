package recovery

import (
	"time"

	"github.com/costcare-ai/agentcore/coreengine/conversation"
	"github.com/google/uuid"
)

// =============================================================================
// Backup snapshots
// =============================================================================

// Snapshot is an immutable deep copy of a conversation state taken before a
// risky operation. Later mutations of the live state never leak into it.
type Snapshot struct {
	ID           string             `json:"id"`
	CreatedAt    time.Time          `json:"created_at"`
	Stage        conversation.Stage `json:"stage"`
	MessageCount int                `json:"message_count"`

	State *conversation.State `json:"state"`
}

// NewSnapshot captures a deep copy of the state.
func NewSnapshot(s *conversation.State) *Snapshot {
	return &Snapshot{
		ID:           "bak_" + uuid.New().String()[:16],
		CreatedAt:    time.Now().UTC(),
		Stage:        s.Stage,
		MessageCount: len(s.Messages),
		State:        s.Clone(),
	}
}

// RestoreStrategy selects how much of the live state survives a restore.
type RestoreStrategy string

const (
	// RestoreFull discards the live state entirely.
	RestoreFull RestoreStrategy = "full_restore"
	// RestorePreserveMessages restores everything except a non-empty live
	// transcript, which is kept.
	RestorePreserveMessages RestoreStrategy = "preserve_messages"
	// RestoreMerge keeps the live state and fills only its empty fields
	// from the snapshot. The live stage is always kept.
	RestoreMerge RestoreStrategy = "merge"
)

// Restore produces a new state from the snapshot according to the strategy.
// Neither the live state nor the snapshot is mutated. Unknown strategies fall
// back to a full restore.
func Restore(current *conversation.State, snap *Snapshot, strategy RestoreStrategy) *conversation.State {
	switch strategy {
	case RestorePreserveMessages:
		restored := snap.State.Clone()
		if len(current.Messages) > 0 {
			restored.Messages = make([]conversation.Message, len(current.Messages))
			copy(restored.Messages, current.Messages)
		}
		return restored

	case RestoreMerge:
		merged := current.Clone()
		backup := snap.State
		if len(merged.Messages) == 0 {
			merged.Messages = make([]conversation.Message, len(backup.Messages))
			copy(merged.Messages, backup.Messages)
		}
		if merged.UserName == "" {
			merged.UserName = backup.UserName
		}
		if merged.UserEmail == "" {
			merged.UserEmail = backup.UserEmail
		}
		if merged.PreferredDate == "" {
			merged.PreferredDate = backup.PreferredDate
		}
		if merged.SelectedSlot == nil {
			merged.SelectedSlot = backup.SelectedSlot.Clone()
		}
		if len(merged.AvailableSlots) == 0 {
			merged.AvailableSlots = make([]conversation.Slot, len(backup.AvailableSlots))
			copy(merged.AvailableSlots, backup.AvailableSlots)
		}
		return merged

	default:
		return snap.State.Clone()
	}
}
