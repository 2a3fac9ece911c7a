package firebase

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"

	"socialnexus/internal/domain/session"
)

type mockSender struct {
	SendFunc func(ctx context.Context, message *messaging.Message) (string, error)
}

func (m *mockSender) Send(ctx context.Context, message *messaging.Message) (string, error) {
	return m.SendFunc(ctx, message)
}

type mockVerifier struct {
	VerifyIDTokenFunc func(ctx context.Context, idToken string) (*auth.Token, error)
}

func (m *mockVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	return m.VerifyIDTokenFunc(ctx, idToken)
}

func TestMessenger_SendToTopic(t *testing.T) {
	var got *messaging.Message
	m := &Messenger{sender: &mockSender{
		SendFunc: func(_ context.Context, msg *messaging.Message) (string, error) {
			got = msg
			return "projects/p/messages/1", nil
		},
	}}

	err := m.SendToTopic(context.Background(), "social_42", "Social Nexus", "YouTube connected successfully!",
		map[string]string{"level": "success"})
	if err != nil {
		t.Fatalf("SendToTopic() error = %v", err)
	}

	if got.Topic != "social_42" {
		t.Errorf("Topic = %q, want social_42", got.Topic)
	}
	if got.Notification == nil || got.Notification.Body != "YouTube connected successfully!" {
		t.Errorf("Notification = %+v", got.Notification)
	}
	if got.Data["level"] != "success" {
		t.Errorf("Data = %v", got.Data)
	}
}

func TestMessenger_SendToTopic_Error(t *testing.T) {
	sendErr := errors.New("unavailable")
	m := &Messenger{sender: &mockSender{
		SendFunc: func(context.Context, *messaging.Message) (string, error) { return "", sendErr },
	}}

	err := m.SendToTopic(context.Background(), "social_42", "t", "b", nil)
	if !errors.Is(err, sendErr) {
		t.Errorf("SendToTopic() error = %v, want wrapped %v", err, sendErr)
	}
}

func TestSessionProvider_GetSession(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		verify  func(ctx context.Context, idToken string) (*auth.Token, error)
		wantID  string
		wantErr error
	}{
		{
			name:  "valid token",
			token: "id-token",
			verify: func(context.Context, string) (*auth.Token, error) {
				return &auth.Token{UID: "uid-1", Claims: map[string]any{"email": "a@b.c"}}, nil
			},
			wantID: "uid-1",
		},
		{
			name:    "empty token",
			token:   "",
			wantErr: session.ErrNoSession,
		},
		{
			name:  "rejected token",
			token: "bad",
			verify: func(context.Context, string) (*auth.Token, error) {
				return nil, errors.New("ID token has expired")
			},
			wantErr: session.ErrInvalidSession,
		},
		{
			name:  "missing uid",
			token: "id-token",
			verify: func(context.Context, string) (*auth.Token, error) {
				return &auth.Token{}, nil
			},
			wantErr: session.ErrInvalidSession,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &SessionProvider{verifier: &mockVerifier{VerifyIDTokenFunc: tt.verify}}

			s, err := p.GetSession(context.Background(), tt.token)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetSession() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetSession() error = %v", err)
			}
			if s.User.ID != tt.wantID || s.User.Email != "a@b.c" {
				t.Errorf("GetSession() user = %+v", s.User)
			}
		})
	}
}
