package service

import (
	"context"
	"testing"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/session"
	"storefront/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuth(t *testing.T) (*AuthService, *session.MemoryStore) {
	t.Helper()
	sessions := session.NewMemoryStore(time.Hour)
	svc := NewAuthService(memstore.New(), sessions, bcrypt.MinCost)
	_, err := svc.CreateAdmin(context.Background(), "admin", "correct-horse")
	require.NoError(t, err)
	return svc, sessions
}

func TestLoginSuccessCreatesSession(t *testing.T) {
	svc, sessions := newAuth(t)
	ctx := context.Background()

	sess, identity, err := svc.Login(ctx, "admin", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "admin", identity.Username)
	assert.Equal(t, 1, sessions.Len())

	me, err := svc.CurrentUser(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.ID, me.ID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, sessions := newAuth(t)
	ctx := context.Background()

	_, _, unknownErr := svc.Login(ctx, "nobody", "correct-horse")
	_, _, wrongErr := svc.Login(ctx, "admin", "wrong-password")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	assert.Equal(t, apperr.HTTPStatus(unknownErr), apperr.HTTPStatus(wrongErr))
	assert.ErrorIs(t, unknownErr, apperr.ErrInvalidCredentials)
	assert.Zero(t, sessions.Len())
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	sess, _, err := svc.Login(ctx, "admin", "correct-horse")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.ID))
	require.NoError(t, svc.Logout(ctx, sess.ID))
	require.NoError(t, svc.Logout(ctx, ""))

	_, err = svc.CurrentUser(ctx, sess.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestCreateAdminRules(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	_, err := svc.CreateAdmin(ctx, "short", "1234567")
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.CreateAdmin(ctx, "admin", "another-password")
	assert.True(t, apperr.IsConflict(err))

	user, err := svc.CreateAdmin(ctx, "editor", "another-password")
	require.NoError(t, err)
	assert.NotEqual(t, "another-password", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("another-password")))
}

func TestEnsureAdminSeedsOnce(t *testing.T) {
	sessions := session.NewMemoryStore(time.Hour)
	svc := NewAuthService(memstore.New(), sessions, bcrypt.MinCost)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "owner", "seed-password")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "owner", "different-password")
	require.NoError(t, err)
	assert.False(t, created)

	_, _, err = svc.Login(ctx, "owner", "seed-password")
	assert.NoError(t, err)
}
