package auth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// ErrUnauthorized wraps any identity verification failure surfaced to the
// caller as a 401.
var ErrUnauthorized = errors.New("unauthorized")

// User is the identity extracted from a verified ID token.
type User struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}

// Verifier checks an ID token with the identity provider and returns the
// verified identity.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*User, error)
}

// GoogleVerifier validates Google ID tokens against the configured OAuth
// client ID.
type GoogleVerifier struct {
	clientID string

	// validate is injectable for tests; nil means the live Google validator.
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, errors.New("missing GOOGLE_CLIENT_ID in environment")
	}
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}, nil
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing idToken", ErrUnauthorized)
	}

	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: token payload has no email claim", ErrUnauthorized)
	}

	name, _ := payload.Claims["name"].(string)
	if name == "" {
		name = "Unknown"
	}
	picture, _ := payload.Claims["picture"].(string)

	return &User{
		Subject: payload.Subject,
		Name:    name,
		Email:   email,
		Picture: picture,
	}, nil
}
