// Package tasks implements the background task dispatcher that drives the
// scoring pipeline. Work ingested for one tenant executes on that tenant's
// own ordered queue, so batch-level computations never interleave within a
// tenant while tenants stay isolated from each other.
package tasks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/aegisai/aegis/pkg/constants"
)

// Task is one unit of background pipeline work.
type Task struct {
	ID       string
	TenantID string
	Kind     constants.TaskKind

	// Payload is the task input; it must marshal to JSON so failed tasks can
	// be dead-lettered in replayable form.
	Payload interface{}

	EnqueuedAt time.Time
	Attempts   int
}

// NewTask builds a task for a tenant.
func NewTask(tenantID string, kind constants.TaskKind, payload interface{}) *Task {
	return &Task{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		Kind:       kind,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}
}

// EncodePayload renders the payload for dead-letter persistence.
func (t *Task) EncodePayload() []byte {
	data, err := json.Marshal(t.Payload)
	if err != nil {
		return []byte(`{}`)
	}
	return data
}

// Handler executes one kind of task. Handlers must be safe for concurrent
// use across tenants; within a tenant they are never called concurrently.
type Handler func(ctx context.Context, task *Task) error
