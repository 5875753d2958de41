package models

import "github.com/google/uuid"

// FetchMode selects which translation a fetch batch performs.
type FetchMode string

const (
	FetchModeSchema FetchMode = "schema"
	FetchModeRecipe FetchMode = "recipe"
)

// IsValid reports whether m is a known mode.
func (m FetchMode) IsValid() bool {
	return m == FetchModeSchema || m == FetchModeRecipe
}

// BatchState tracks a fetch batch through its lifecycle.
type BatchState string

const (
	BatchPending             BatchState = "pending"
	BatchRunning             BatchState = "running"
	BatchCompleted           BatchState = "completed"
	BatchCompletedWithErrors BatchState = "completed_with_errors"
	BatchCancelled           BatchState = "cancelled"
)

// IsTerminal reports whether the batch can no longer change state.
func (s BatchState) IsTerminal() bool {
	switch s {
	case BatchCompleted, BatchCompletedWithErrors, BatchCancelled:
		return true
	}
	return false
}

// FetchEventType identifies the kind of a fetch event.
type FetchEventType string

const (
	FetchEventObjectCompleted FetchEventType = "object_completed"
	FetchEventObjectFailed    FetchEventType = "object_failed"
	FetchEventBatchComplete   FetchEventType = "batch_complete"
)

// FetchEvent is emitted for every finished object of a batch and once when
// the whole batch settles.
//
// IsFinal is true only on the success event that brings the success count to
// the batch total. A batch with any failure never produces IsFinal; consumers
// wait for FetchEventBatchComplete instead.
type FetchEvent struct {
	Type      FetchEventType `json:"type"`
	BatchID   uuid.UUID      `json:"batch_id"`
	Mode      FetchMode      `json:"mode"`
	Object    string         `json:"object,omitempty"`
	Schema    *ObjectSchema  `json:"object_schema,omitempty"`
	Progress  string         `json:"progress,omitempty"`
	Fraction  float64        `json:"fraction"`
	IsFinal   bool           `json:"is_final"`
	Error     string         `json:"error,omitempty"`
	State     BatchState     `json:"state,omitempty"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
	Cancelled int            `json:"cancelled,omitempty"`
	Total     int            `json:"total"`
	LimitInfo *LimitInfo     `json:"limit_info,omitempty"`
}
