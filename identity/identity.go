// Package identity wraps the Firebase Auth service: verifying caller ID tokens
// and deleting accounts. Deletion reports a missing account as a typed
// ErrAccountNotFound so callers can branch without matching provider error
// strings.
package identity

import (
	"context"
	"errors"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
)

// ErrAccountNotFound is given by DeleteAccount when the account is already
// absent from the identity provider.
var ErrAccountNotFound = errors.New("identity: account not found")

// Service exposes the identity-provider operations used by the handlers.
type Service struct {
	auth *auth.Client
}

// New creates a Service from the Firebase app.
func New(ctx context.Context, app *firebase.App) (*Service, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &Service{auth: client}, nil
}

// VerifyIDToken decodes the ID token and gives the caller's account ID.
func (s *Service) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	token, err := s.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	return token.UID, nil
}

// DeleteAccount removes the identity account with the given ID. A provider
// user-not-found failure is translated to ErrAccountNotFound.
func (s *Service) DeleteAccount(ctx context.Context, uid string) error {
	err := s.auth.DeleteUser(ctx, uid)
	if err != nil && auth.IsUserNotFound(err) {
		return ErrAccountNotFound
	}
	return err
}
