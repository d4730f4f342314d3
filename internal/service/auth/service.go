// Package auth issues and verifies the tokens that put a real identity
// behind the opaque donorId/claimedBy strings the lifecycle service works
// with.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foodsecurity/foodshare/internal/domain/models"
)

// ErrInvalidCredentials is returned for an unknown email or wrong password;
// the caller cannot tell which.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidToken is returned when a bearer token fails verification.
var ErrInvalidToken = errors.New("invalid or expired token")

// Store is the account persistence surface the auth service needs.
type Store interface {
	InsertUser(ctx context.Context, u models.User) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, id string) (models.User, error)
}

// Service handles registration, login and token verification.
type Service struct {
	store  Store
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new auth service instance.
func NewService(store Store, secret string, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

type tokenClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RegisterInput carries a new account request.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates an account and returns it with a fresh token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, string, error) {
	if s.store == nil {
		return models.User{}, "", models.ErrUnavailable
	}

	switch {
	case strings.TrimSpace(in.Name) == "":
		return models.User{}, "", &models.ValidationError{Field: "name", Reason: "must not be empty"}
	case strings.TrimSpace(in.Email) == "":
		return models.User{}, "", &models.ValidationError{Field: "email", Reason: "must not be empty"}
	case len(in.Password) < 8:
		return models.User{}, "", &models.ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	case !models.ValidRole(in.Role):
		return models.User{}, "", &models.ValidationError{Field: "role", Reason: "unknown role"}
	}

	hash, salt, err := hashPassword(in.Password)
	if err != nil {
		return models.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.InsertUser(ctx, models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Role:         in.Role,
		PasswordHash: hash,
		PasswordSalt: salt,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return models.User{}, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return models.User{}, "", err
	}

	s.logger.Info("user registered",
		zap.String("userId", user.ID.Hex()),
		zap.String("role", user.Role))
	return user, token, nil
}

// Login verifies credentials and returns the account with a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (models.User, string, error) {
	if s.store == nil {
		return models.User{}, "", models.ErrUnavailable
	}

	user, err := s.store.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, models.ErrNotFound) {
		return models.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, "", err
	}

	ok, err := verifyPassword(password, user.PasswordSalt, user.PasswordHash)
	if err != nil {
		return models.User{}, "", fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return models.User{}, "", err
	}

	s.logger.Info("user logged in", zap.String("userId", user.ID.Hex()))
	return user, token, nil
}

// Verify checks a bearer token and returns the identity it carries.
func (s *Service) Verify(tokenString string) (models.Identity, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return models.Identity{}, ErrInvalidToken
	}

	return models.Identity{
		UserID: claims.Subject,
		Name:   claims.Name,
		Role:   claims.Role,
	}, nil
}

func (s *Service) issueToken(user models.User) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Name: user.Name,
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
