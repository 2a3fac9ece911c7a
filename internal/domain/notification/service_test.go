package notification

import (
	"context"
	"errors"
	"testing"
	"time"
)

type sentMessage struct {
	topic, title, body string
	data               map[string]string
}

// MockMessenger records every push it is asked to send.
type MockMessenger struct {
	sent chan sentMessage
	err  error
}

func newMockMessenger(err error) *MockMessenger {
	return &MockMessenger{sent: make(chan sentMessage, 4), err: err}
}

func (m *MockMessenger) SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error {
	m.sent <- sentMessage{topic: topic, title: title, body: body, data: data}
	return m.err
}

func (m *MockMessenger) next(t *testing.T) sentMessage {
	t.Helper()
	select {
	case msg := <-m.sent:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no push sent")
		return sentMessage{}
	}
}

func (m *MockMessenger) assertNone(t *testing.T) {
	t.Helper()
	select {
	case msg := <-m.sent:
		t.Errorf("unexpected push: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTopicForUser(t *testing.T) {
	if got := TopicForUser("42"); got != "social_42" {
		t.Errorf("TopicForUser(42) = %q, want social_42", got)
	}
}

func TestService_Notify(t *testing.T) {
	m := newMockMessenger(nil)
	svc := NewService(m, "Social Nexus")

	svc.Notify(context.Background(), "42", Success("YouTube connected successfully!"))

	msg := m.next(t)
	if msg.topic != "social_42" {
		t.Errorf("topic = %q, want social_42", msg.topic)
	}
	if msg.title != "Social Nexus" || msg.body != "YouTube connected successfully!" {
		t.Errorf("title/body = %q/%q", msg.title, msg.body)
	}
	if msg.data["level"] != "success" || msg.data["route"] != "social" {
		t.Errorf("data = %v", msg.data)
	}
}

func TestService_SkipsAnonymousAndInvalid(t *testing.T) {
	m := newMockMessenger(nil)
	svc := NewService(m, "Social Nexus")

	svc.Notify(context.Background(), "", Success("hello"))
	svc.Notify(context.Background(), "42", Notification{Level: "info", Message: "x"})

	m.assertNone(t)
}

func TestService_SendFailureIsSwallowed(t *testing.T) {
	m := newMockMessenger(errors.New("fcm unavailable"))
	svc := NewService(m, "Social Nexus")

	svc.Notify(context.Background(), "42", Error("Something went wrong, please try again"))
	m.next(t)
}

func TestService_NilMessenger(t *testing.T) {
	svc := NewService(nil, "Social Nexus")
	svc.Notify(context.Background(), "42", Success("hello"))
}

func TestService_OutlivesRequestContext(t *testing.T) {
	m := newMockMessenger(nil)
	svc := NewService(m, "Social Nexus")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Notify(ctx, "42", Success("hello"))

	m.next(t)
}
