package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenfee/tourops/models"
)

func TestRegister_DefaultsToManagerRole(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  Manager@Example.COM ",
		Password: "correct horse",
		Name:     "김매니저",
	})
	require.NoError(t, err)
	assert.Equal(t, "manager@example.com", user.Email)
	assert.Equal(t, models.RoleManager, user.Role)
	assert.Empty(t, user.PasswordHash)
}

func TestRegister_Validation(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@b.c", Password: "short", Name: "A"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = svc.Register(ctx, RegisterInput{Password: "long enough", Name: "A"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Register(ctx, RegisterInput{
		Email: "a@b.c", Password: "long enough", Name: "A", Role: models.UserRole("root"),
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestRegister_EmailConflict(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email: "dup@example.com", Password: "long enough", Name: "첫번째",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{
		Email: "DUP@example.com", Password: "long enough", Name: "두번째",
	})
	assert.ErrorIs(t, err, ErrUserEmailConflict)
}

func TestLogin(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email: "admin@example.com", Password: "correct horse", Name: "관리자", Role: models.RoleAdmin,
	})
	require.NoError(t, err)

	user, err := svc.Login(ctx, LoginInput{Email: "Admin@Example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.Login(ctx, LoginInput{Email: "admin@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}
