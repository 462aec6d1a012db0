// Package recovery provides conversation state protection: invariant
// validation, sanitization, backup snapshots with three restore strategies,
// transient-error classification and panic-safe execution.
//
// The turn driver snapshots state before running handlers and consults
// SuggestStrategy when a turn fails, so a single bad turn never destroys a
// conversation.
package recovery

import "github.com/costcare-ai/agentcore/logging"

// Logger is the interface for logging.
type Logger = logging.Logger
