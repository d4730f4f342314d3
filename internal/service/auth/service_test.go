package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodsecurity/foodshare/internal/domain/models"
	"github.com/foodsecurity/foodshare/internal/repository/memory"
)

func newTestService() *Service {
	return NewService(memory.NewUserStore(), "test-secret", time.Hour, nil)
}

func registerInput() RegisterInput {
	return RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.org",
		Password: "correct horse",
		Role:     models.RoleDonor,
	}
}

func TestRegisterAndVerify(t *testing.T) {
	svc := newTestService()

	user, token, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)
	assert.False(t, user.ID.IsZero())
	assert.Equal(t, models.RoleDonor, user.Role)
	require.NotEmpty(t, token)

	identity, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), identity.UserID)
	assert.Equal(t, "Alice", identity.Name)
	assert.Equal(t, models.RoleDonor, identity.Role)
}

func TestRegisterValidation(t *testing.T) {
	cases := map[string]func(*RegisterInput){
		"missing name":   func(in *RegisterInput) { in.Name = "" },
		"missing email":  func(in *RegisterInput) { in.Email = "" },
		"short password": func(in *RegisterInput) { in.Password = "short" },
		"unknown role":   func(in *RegisterInput) { in.Role = "superuser" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			svc := newTestService()
			in := registerInput()
			mutate(&in)

			_, _, err := svc.Register(context.Background(), in)

			var validationErr *models.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService()

	_, _, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), registerInput())
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "email", validationErr.Field)
}

func TestLogin(t *testing.T) {
	svc := newTestService()
	registered, _, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	user, token, err := svc.Login(context.Background(), "alice@example.org", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	identity, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID.Hex(), identity.UserID)
}

func TestLoginNormalizesEmail(t *testing.T) {
	svc := newTestService()
	_, _, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "  ALICE@example.org ", "correct horse")
	assert.NoError(t, err)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService()
	_, _, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "alice@example.org", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody@example.org", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := newTestService()

	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	svc := newTestService()
	_, token, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	other := NewService(memory.NewUserStore(), "another-secret", time.Hour, nil)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := newTestService()
	_, token, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
