package disco_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	disco "github.com/goliatone/go-disco"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContextRoundTrip(t *testing.T) {
	user := &disco.User{ID: uuid.New(), Email: "teste@email.com"}

	ctx := disco.WithContext(context.Background(), user)
	got, ok := disco.FromContext(ctx)

	require.True(t, ok)
	assert.Equal(t, user, got)
}

func TestFromContextMissing(t *testing.T) {
	_, ok := disco.FromContext(context.Background())
	assert.False(t, ok)
}

func TestClaimsContextRoundTrip(t *testing.T) {
	claims := &disco.JWTClaims{UID: "user-123"}

	ctx := disco.WithClaimsContext(context.Background(), claims)
	got, ok := disco.GetClaims(ctx)

	require.True(t, ok)
	assert.Equal(t, "user-123", got.UserID())
}

func TestUserUUIDFromClaims(t *testing.T) {
	id := uuid.New()
	claims := &disco.JWTClaims{UID: id.String()}

	parsed, err := disco.UserUUIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = disco.UserUUIDFromClaims(&disco.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-uuid"},
	})
	assert.Error(t, err)
}
