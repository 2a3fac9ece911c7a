package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
)

type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Messenger implements notification.Messenger using Firebase Cloud Messaging.
type Messenger struct {
	sender messageSender
}

// NewMessenger returns an FCM-backed messenger for app.
func NewMessenger(ctx context.Context, app *firebase.App) (*Messenger, error) {
	msgClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging client: %w", err)
	}
	return &Messenger{sender: msgClient}, nil
}

// SendToTopic pushes a notification to every device subscribed to topic.
func (m *Messenger) SendToTopic(ctx context.Context, topic string, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := m.sender.Send(ctx, msg); err != nil {
		if messaging.IsInvalidArgument(err) {
			return fmt.Errorf("invalid FCM message for topic %s: %w", topic, err)
		}
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	return nil
}
