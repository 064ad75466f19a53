package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/polybooks/polybooks/internal/apperr"
	"github.com/polybooks/polybooks/internal/config"
	"github.com/polybooks/polybooks/internal/model"
	"github.com/polybooks/polybooks/internal/repository"
)

type RegisterParams struct {
	Username string
	Email    string
	FullName string
	Password string
	Roles    []string
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        model.User
}

type TokenClaims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, params RegisterParams) (model.User, error)
	Login(ctx context.Context, username, password string) (LoginResult, error)
	VerifyToken(tokenString string) (TokenClaims, error)
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
}

type authService struct {
	cfg      config.Auth
	userRepo repository.UserRepository
}

func NewAuthService(cfg config.Auth, userRepo repository.UserRepository) AuthService {
	return &authService{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

func (s *authService) Register(ctx context.Context, params RegisterParams) (model.User, error) {
	// Reject a taken email before hashing; the insert's unique constraints
	// remain the authority under concurrent registration.
	if _, err := s.userRepo.GetByEmail(ctx, params.Email); err == nil {
		return model.User{}, apperr.UserConflictErr
	} else if !errors.Is(err, apperr.UserNotFoundErr) {
		return model.User{}, fmt.Errorf("user repository get by email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.cfg.BcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.User{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	roles := params.Roles
	if len(roles) == 0 {
		roles = []string{"user"}
	}

	user := model.User{
		ID:             id,
		Username:       params.Username,
		Email:          params.Email,
		FullName:       params.FullName,
		HashedPassword: string(hashed),
		Roles:          roles,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return model.User{}, fmt.Errorf("user repository create: %w", err)
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.UserNotFoundErr) {
			return LoginResult{}, apperr.InvalidCredentialsErr
		}
		return LoginResult{}, fmt.Errorf("user repository get by username: %w", err)
	}

	if !user.IsActive {
		return LoginResult{}, apperr.InvalidCredentialsErr
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return LoginResult{}, apperr.InvalidCredentialsErr.WrapParent(err)
	}

	now := time.Now()
	expiresAt := now.Add(s.cfg.TokenLifetime)

	claims := TokenClaims{
		Username: user.Username,
		Roles:    user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return LoginResult{}, fmt.Errorf("user repository update last login: %w", err)
	}
	user.LastLogin = &now

	return LoginResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

func (s *authService) VerifyToken(tokenString string) (TokenClaims, error) {
	var claims TokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithIssuer(s.cfg.Issuer))
	if err != nil {
		return TokenClaims{}, apperr.InvalidTokenErr.WrapParent(err)
	}
	if !token.Valid {
		return TokenClaims{}, apperr.InvalidTokenErr
	}

	return claims, nil
}

func (s *authService) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return model.User{}, fmt.Errorf("user repository get by id: %w", err)
	}

	return user, nil
}
