// Package push wraps the FCM messaging client. A send to a token that is no
// longer registered is reported as a typed ErrTokenNotRegistered so callers
// can prune the stored token.
package push

import (
	"context"
	"errors"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
)

// ErrTokenNotRegistered is given by Send when the delivery token is invalid or
// no longer registered with the provider.
var ErrTokenNotRegistered = errors.New("push: token not registered")

// Notification is one push message addressed to a single device token.
type Notification struct {
	Token string
	Title string
	Body  string
	// Data carries structured metadata for the client app (type, teamId,
	// requestId, staffId, requestType).
	Data map[string]string
}

// Sender exposes the push-provider operation used by the notifiers.
type Sender struct {
	messaging *messaging.Client
}

// New creates a Sender from the Firebase app.
func New(ctx context.Context, app *firebase.App) (*Sender, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	return &Sender{messaging: client}, nil
}

// Send delivers the notification with high-priority hints and a badge/sound on
// mobile platforms.
func (s *Sender) Send(ctx context.Context, n *Notification) error {
	badge := 1
	message := &messaging.Message{
		Token: n.Token,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: n.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Badge: &badge,
					Sound: "default",
				},
			},
		},
	}
	_, err := s.messaging.Send(ctx, message)
	if err != nil && messaging.IsRegistrationTokenNotRegistered(err) {
		return ErrTokenNotRegistered
	}
	return err
}
