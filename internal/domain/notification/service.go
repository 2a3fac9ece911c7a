package notification

import (
	"context"
	"log"
	"time"
)

const pushTimeout = 10 * time.Second

// Service mirrors panel notifications to the user's devices through a
// Messenger. Anonymous users and a nil messenger are skipped.
type Service struct {
	messenger Messenger
	title     string
}

// NewService creates a new notification service
func NewService(messenger Messenger, title string) *Service {
	return &Service{messenger: messenger, title: title}
}

// TopicForUser is the FCM topic a user's devices subscribe to.
func TopicForUser(userID string) string {
	return "social_" + userID
}

// Notify sends the notification in the background; the caller is never blocked.
func (s *Service) Notify(ctx context.Context, userID string, n Notification) {
	if s.messenger == nil || userID == "" {
		return
	}
	if err := n.Validate(); err != nil {
		log.Printf("Dropping invalid notification for user %s: %v", userID, err)
		return
	}

	data := map[string]string{
		"level": string(n.Level),
		"route": "social",
	}

	go func() {
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
		defer cancel()

		if err := s.messenger.SendToTopic(pushCtx, TopicForUser(userID), s.title, n.Message, data); err != nil {
			log.Printf("Error sending notification to user %s: %v", userID, err)
		}
	}()
}
