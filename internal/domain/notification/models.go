package notification

import (
	"context"
	"errors"
	"time"
)

// Level tells the host how to style a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

var ErrInvalidLevel = errors.New("notification level must be 'success' or 'error'")

// Notification is a fire-and-forget toast shown to the panel user.
type Notification struct {
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

func (n Notification) Validate() error {
	switch n.Level {
	case LevelSuccess, LevelError:
	default:
		return ErrInvalidLevel
	}
	if n.Message == "" {
		return errors.New("message is required")
	}
	return nil
}

// Success builds a success notification.
func Success(message string) Notification {
	return Notification{Level: LevelSuccess, Message: message, CreatedAt: time.Now()}
}

// Error builds an error notification.
func Error(message string) Notification {
	return Notification{Level: LevelError, Message: message, CreatedAt: time.Now()}
}

// Sink receives notifications. Callers never wait on delivery and ignore
// any outcome, so implementations must not block for long.
type Sink interface {
	Notify(ctx context.Context, userID string, n Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, userID string, n Notification)

func (f SinkFunc) Notify(ctx context.Context, userID string, n Notification) {
	f(ctx, userID, n)
}
