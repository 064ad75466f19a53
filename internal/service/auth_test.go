package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/polybooks/polybooks/internal/apperr"
	"github.com/polybooks/polybooks/internal/config"
	"github.com/polybooks/polybooks/internal/service"
)

func newAuthFixture() (service.AuthService, *memUserRepo) {
	userRepo := &memUserRepo{}
	svc := service.NewAuthService(config.Auth{
		JWTSecret:     "test-secret",
		TokenLifetime: time.Hour,
		Issuer:        "polybooks",
		BcryptCost:    bcrypt.MinCost,
	}, userRepo)
	return svc, userRepo
}

func TestRegister(t *testing.T) {
	svc, userRepo := newAuthFixture()

	user, err := svc.Register(context.Background(), service.RegisterParams{
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice Example",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-pass", user.HashedPassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("s3cret-pass")))
	assert.Equal(t, []string{"user"}, user.Roles)
	assert.True(t, user.IsActive)

	t.Run("Should reject a duplicate username", func(t *testing.T) {
		_, err := svc.Register(context.Background(), service.RegisterParams{
			Username: "alice",
			Email:    "other@example.com",
			Password: "another-pass",
		})
		assert.ErrorIs(t, err, apperr.UserConflictErr)
	})

	t.Run("Should reject a duplicate email", func(t *testing.T) {
		_, err := svc.Register(context.Background(), service.RegisterParams{
			Username: "alice2",
			Email:    "alice@example.com",
			Password: "another-pass",
		})
		assert.ErrorIs(t, err, apperr.UserConflictErr)
	})

	require.Len(t, userRepo.users, 1)
}

func TestLogin(t *testing.T) {
	svc, userRepo := newAuthFixture()

	registered, err := svc.Register(context.Background(), service.RegisterParams{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	t.Run("Should succeed with valid credentials", func(t *testing.T) {
		result, err := svc.Login(context.Background(), "bob", "correct-horse")
		require.NoError(t, err)

		assert.NotEmpty(t, result.AccessToken)
		assert.True(t, result.ExpiresAt.After(time.Now()))
		assert.Equal(t, registered.ID, result.User.ID)
		require.NotNil(t, result.User.LastLogin)
	})

	t.Run("Should reject a wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "bob", "wrong-password")
		assert.ErrorIs(t, err, apperr.InvalidCredentialsErr)
	})

	t.Run("Should reject an unknown user", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "nobody", "whatever")
		assert.ErrorIs(t, err, apperr.InvalidCredentialsErr)
	})

	t.Run("Should reject an inactive user", func(t *testing.T) {
		userRepo.users[0].IsActive = false
		defer func() { userRepo.users[0].IsActive = true }()

		_, err := svc.Login(context.Background(), "bob", "correct-horse")
		assert.ErrorIs(t, err, apperr.InvalidCredentialsErr)
	})
}

func TestVerifyToken(t *testing.T) {
	svc, _ := newAuthFixture()

	registered, err := svc.Register(context.Background(), service.RegisterParams{
		Username: "carol",
		Email:    "carol@example.com",
		Password: "pass-word-123",
		Roles:    []string{"admin"},
	})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "carol", "pass-word-123")
	require.NoError(t, err)

	t.Run("Should verify a freshly issued token", func(t *testing.T) {
		claims, err := svc.VerifyToken(result.AccessToken)
		require.NoError(t, err)

		assert.Equal(t, registered.ID.String(), claims.Subject)
		assert.Equal(t, "carol", claims.Username)
		assert.Equal(t, []string{"admin"}, claims.Roles)
	})

	t.Run("Should reject a tampered token", func(t *testing.T) {
		_, err := svc.VerifyToken(result.AccessToken + "x")
		assert.ErrorIs(t, err, apperr.InvalidTokenErr)
	})

	t.Run("Should reject a token signed with another secret", func(t *testing.T) {
		otherSvc := service.NewAuthService(config.Auth{
			JWTSecret:     "different-secret",
			TokenLifetime: time.Hour,
			Issuer:        "polybooks",
			BcryptCost:    bcrypt.MinCost,
		}, &memUserRepo{})

		_, err := otherSvc.VerifyToken(result.AccessToken)
		assert.ErrorIs(t, err, apperr.InvalidTokenErr)
	})
}
