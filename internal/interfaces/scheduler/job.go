package scheduler

import "context"

// Job is a unit of work run by the worker pool.
type Job interface {
	// Execute runs the job. The context carries the job timeout.
	Execute(ctx context.Context) error

	// UserID is the session user the job acts for; empty when anonymous.
	UserID() string

	// Description is used in logs and span attributes.
	Description() string
}

// funcJob adapts a closure to Job.
type funcJob struct {
	userID      string
	description string
	fn          func(ctx context.Context) error
}

func (j funcJob) Execute(ctx context.Context) error { return j.fn(ctx) }
func (j funcJob) UserID() string                    { return j.userID }
func (j funcJob) Description() string               { return j.description }
