package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"quality-service/internal/models"
	"quality-service/internal/repository"
)

// SessionClaims is the JWT payload carried by the session cookie
type SessionClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	SessionID uuid.UUID `json:"session_id"`
	Role      string    `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and validates sessions. Tokens are HS256 JWTs; the
// session itself lives in Redis so logout revokes it before the JWT expires.
type AuthService struct {
	users      repository.UserRepository
	sessions   repository.SessionStore
	jwtSecret  []byte
	sessionTTL time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(users repository.UserRepository, sessions repository.SessionStore, jwtSecret string, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
	}
}

// Login verifies credentials and opens a session, returning the signed token
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.AuthContext, error) {
	if email == "" || password == "" {
		return "", nil, ValidationError("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, UpstreamError("failed to load user", err)
	}
	if user == nil {
		return "", nil, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrUnauthorized
	}

	auth := &models.AuthContext{
		UserID:       user.ID,
		Role:         user.Role,
		LaboratoryID: user.LaboratoryID,
		ClientID:     user.ClientID,
		SessionID:    uuid.New(),
	}
	if err := s.sessions.Save(ctx, auth, s.sessionTTL); err != nil {
		return "", nil, UpstreamError("failed to save session", err)
	}

	now := time.Now()
	claims := &SessionClaims{
		UserID:    user.ID,
		SessionID: auth.SessionID,
		Role:      user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "quality-service",
			Subject:   user.ID.String(),
			ID:        auth.SessionID.String(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		// Last-login is best effort; the session is already valid.
		_ = err
	}

	return token, auth, nil
}

// Validate parses the token and confirms the session is still live in Redis
func (s *AuthService) Validate(ctx context.Context, tokenString string) (*models.AuthContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, ErrUnauthorized
	}

	auth, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, UpstreamError("failed to load session", err)
	}
	if auth == nil {
		return nil, ErrUnauthorized
	}
	return auth, nil
}

// Logout revokes the session
func (s *AuthService) Logout(ctx context.Context, auth models.AuthContext) error {
	return s.sessions.Delete(ctx, auth.SessionID)
}
