package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/testhelpers"
)

func TestRegisterAndLogin(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewAuthService(db, nil, "test-secret")
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Email:     "alice@example.com",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "secret-pass",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "secret-pass", user.PasswordHash)

	token, err := svc.Login(ctx, "alice@example.com", "secret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewAuthService(db, nil, "test-secret")
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "bob@example.com",
		Username: "bob",
		Password: "secret-pass",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "bob@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "secret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewAuthService(db, nil, "test-secret")
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "bad@example.com",
		Username: "bad name!",
		Password: "secret-pass",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "username", verr.Field)

	_, err = svc.Register(ctx, RegisterInput{
		Email:    "short@example.com",
		Username: "short",
		Password: "abc",
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewAuthService(db, nil, "test-secret")
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "dup@example.com",
		Username: "first",
		Password: "secret-pass",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{
		Email:    "dup@example.com",
		Username: "second",
		Password: "secret-pass",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)

	_, err = svc.Register(ctx, RegisterInput{
		Email:    "other@example.com",
		Username: "first",
		Password: "secret-pass",
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "username", verr.Field)
}

func TestSetPassword(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewAuthService(db, nil, "test-secret")
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Email:    "carol@example.com",
		Username: "carol",
		Password: "old-password",
	})
	require.NoError(t, err)

	err = svc.SetPassword(ctx, user.ID, "wrong", "new-password")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "current_password", verr.Field)

	require.NoError(t, svc.SetPassword(ctx, user.ID, "old-password", "new-password"))

	_, err = svc.Login(ctx, "carol@example.com", "old-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "carol@example.com", "new-password")
	assert.NoError(t, err)
}

func TestValidateTokenRejectsForgedToken(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewAuthService(db, nil, "test-secret")
	other := NewAuthService(db, nil, "other-secret")
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Email:    "dave@example.com",
		Username: "dave",
		Password: "secret-pass",
	})
	require.NoError(t, err)

	token, err := other.Login(ctx, "dave@example.com", "secret-pass")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
