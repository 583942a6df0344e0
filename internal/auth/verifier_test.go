package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func stubValidator(payload *idtoken.Payload, err error) func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
	return func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		return payload, err
	}
}

func TestNewGoogleVerifier(t *testing.T) {
	_, err := NewGoogleVerifier("")
	require.Error(t, err)

	v, err := NewGoogleVerifier("client-123")
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestGoogleVerifierVerify(t *testing.T) {
	t.Run("valid token yields the identity", func(t *testing.T) {
		v := &GoogleVerifier{
			clientID: "client-123",
			validate: func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
				assert.Equal(t, "tok", token)
				assert.Equal(t, "client-123", audience)
				return &idtoken.Payload{
					Subject: "sub-1",
					Claims: map[string]any{
						"email":   "ada@example.com",
						"name":    "Ada",
						"picture": "https://example.com/ada.png",
					},
				}, nil
			},
		}

		user, err := v.Verify(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, &User{
			Subject: "sub-1",
			Name:    "Ada",
			Email:   "ada@example.com",
			Picture: "https://example.com/ada.png",
		}, user)
	})

	t.Run("empty token is unauthorized", func(t *testing.T) {
		v := &GoogleVerifier{clientID: "c", validate: stubValidator(nil, nil)}
		_, err := v.Verify(context.Background(), "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("provider rejection is unauthorized", func(t *testing.T) {
		v := &GoogleVerifier{clientID: "c", validate: stubValidator(nil, errors.New("token expired"))}
		_, err := v.Verify(context.Background(), "tok")
		require.ErrorIs(t, err, ErrUnauthorized)
		assert.Contains(t, err.Error(), "token expired")
	})

	t.Run("missing email claim is unauthorized", func(t *testing.T) {
		v := &GoogleVerifier{clientID: "c", validate: stubValidator(&idtoken.Payload{Claims: map[string]any{"name": "Ada"}}, nil)}
		_, err := v.Verify(context.Background(), "tok")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("missing name defaults", func(t *testing.T) {
		v := &GoogleVerifier{clientID: "c", validate: stubValidator(&idtoken.Payload{Claims: map[string]any{"email": "x@example.com"}}, nil)}
		user, err := v.Verify(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, "Unknown", user.Name)
	})
}
