package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aegisai/aegis/pkg/constants"
)

// DeadLetterTask records a background task that exhausted its retries or was
// rejected by a full queue. Failures are persisted so they are observable and
// replayable instead of silently dropped.
type DeadLetterTask struct {
	ID       string             `gorm:"primaryKey;size:36"`
	TenantID string             `gorm:"index;size:36;not null"`
	Kind     constants.TaskKind `gorm:"size:32;not null"`

	// Payload is the task's JSON-encoded input, sufficient to replay it.
	Payload []byte `gorm:"type:jsonb"`

	// Reason is the final error (or overflow cause) that dead-lettered the task.
	Reason string `gorm:"type:text"`

	Attempts  int
	CreatedAt time.Time `gorm:"index"`
}

// NewDeadLetterTask builds a dead-letter record.
func NewDeadLetterTask(tenantID string, kind constants.TaskKind, payload []byte, reason string, attempts int) *DeadLetterTask {
	return &DeadLetterTask{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		Kind:     kind,
		Payload:  payload,
		Reason:   reason,
		Attempts: attempts,
	}
}
