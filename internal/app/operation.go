package app

import (
	"time"

	"ftl-go/internal/ftl"
)

// Operation tracks one CLI invocation. Its ID tags every log line written
// while it runs so the lines of concurrent invocations can be told apart.
type Operation struct {
	ID        string
	Name      string
	Status    string // "success" or "error"
	StartedAt time.Time
}

// NewOperation starts an in-memory operation record.
func NewOperation(name string, idgen ftl.IDGenerator, clock ftl.Clock) *Operation {
	return &Operation{
		ID:        idgen.New(),
		Name:      name,
		Status:    "success",
		StartedAt: clock.Now(),
	}
}

// Fail marks the operation as failed.
func (op *Operation) Fail() {
	op.Status = "error"
}

// Failed reports whether Fail was called.
func (op *Operation) Failed() bool {
	return op.Status == "error"
}
