package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"quality-service/internal/models"
)

func newAuthTestService(t *testing.T) (*AuthService, *fakeUserRepo, *fakeSessionStore) {
	t.Helper()
	users := newFakeUserRepo()
	sessions := newFakeSessionStore()
	return NewAuthService(users, sessions, "test-secret", time.Hour), users, sessions
}

func seedUser(t *testing.T, users *fakeUserRepo, email, password, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	users.byEmail[email] = user
	return user
}

func TestLoginAndValidate(t *testing.T) {
	svc, users, _ := newAuthTestService(t)
	user := seedUser(t, users, "director@waqc.test", "correct horse", models.RoleLabDirector)

	token, auth, err := svc.Login(context.Background(), "director@waqc.test", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, user.ID, auth.UserID)
	assert.Equal(t, models.RoleLabDirector, auth.Role)

	resolved, err := svc.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, auth.UserID, resolved.UserID)
	assert.Equal(t, auth.SessionID, resolved.SessionID)
}

func TestLoginRejections(t *testing.T) {
	svc, users, _ := newAuthTestService(t)
	seedUser(t, users, "staff@waqc.test", "secret", models.RoleStaff)

	_, _, err := svc.Login(context.Background(), "", "secret")
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.Login(context.Background(), "nobody@waqc.test", "secret")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = svc.Login(context.Background(), "staff@waqc.test", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestValidateGarbageToken(t *testing.T) {
	svc, _, _ := newAuthTestService(t)

	_, err := svc.Validate(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, users, _ := newAuthTestService(t)
	seedUser(t, users, "staff@waqc.test", "secret", models.RoleStaff)

	token, auth, err := svc.Login(context.Background(), "staff@waqc.test", "secret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), *auth))

	// The JWT is still within its expiry window but the session is gone.
	_, err = svc.Validate(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionStore()
	issuer := NewAuthService(users, sessions, "issuer-secret", time.Hour)
	verifier := NewAuthService(users, sessions, "other-secret", time.Hour)

	seedUser(t, users, "staff@waqc.test", "secret", models.RoleStaff)
	token, _, err := issuer.Login(context.Background(), "staff@waqc.test", "secret")
	require.NoError(t, err)

	_, err = verifier.Validate(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
