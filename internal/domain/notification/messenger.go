package notification

import "context"

// Messenger pushes a toast to every device subscribed to a user's topic.
type Messenger interface {
	SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error
}
