package social

import (
	"context"
	"time"
)

// DefaultConnectDelay is how long the simulated connector pretends to work.
const DefaultConnectDelay = 1500 * time.Millisecond

// Connector performs the external half of a connect. The panel keeps the
// provider in Connecting until it returns and only stores the link on success.
type Connector interface {
	Connect(ctx context.Context, p Provider, link string) error
}

// SimulatedConnector waits for Delay and succeeds. No provider is contacted.
type SimulatedConnector struct {
	Delay time.Duration
}

func NewSimulatedConnector(delay time.Duration) *SimulatedConnector {
	return &SimulatedConnector{Delay: delay}
}

func (c *SimulatedConnector) Connect(ctx context.Context, p Provider, link string) error {
	if c.Delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(c.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Executor runs connect completions off the caller's goroutine.
// The interfaces/scheduler worker pool satisfies it.
type Executor interface {
	Run(userID, description string, fn func(ctx context.Context) error) error
}

// GoExecutor runs each completion on its own goroutine.
type GoExecutor struct{}

func (GoExecutor) Run(userID, description string, fn func(ctx context.Context) error) error {
	go fn(context.Background())
	return nil
}
