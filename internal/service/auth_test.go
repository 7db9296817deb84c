package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/product_hub/internal/events"
	"github.com/Skotchmaster/product_hub/internal/hash"
	"github.com/Skotchmaster/product_hub/internal/tokens"
)

func TestRegister(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, RegisterInput{Email: "  A@X.com ", Password: "secret", FirstName: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.NotEqual(t, "secret", user.PasswordHash)
	assert.True(t, hash.CheckPassword(user.PasswordHash, "secret"))
	assert.Equal(t, []string{events.UserRegistered}, env.pub.types())

	_, err = env.auth.Register(ctx, RegisterInput{Email: "a@x.com", Password: "other"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		name    string
		in      RegisterInput
		message string
	}{
		{name: "missing email", in: RegisterInput{Password: "p"}, message: "Email and password are required"},
		{name: "missing password", in: RegisterInput{Email: "a@x.com"}, message: "Email and password are required"},
		{name: "malformed email", in: RegisterInput{Email: "nope", Password: "p"}, message: "email: Enter a valid email address."},
		{name: "display name", in: RegisterInput{Email: "Bob <b@x.com>", Password: "p"}, message: "email: Enter a valid email address."},
		{name: "long phone", in: RegisterInput{Email: "b@x.com", Password: "p", PhoneNumber: strings.Repeat("1", 16)}, message: "phone_number: Ensure this field has no more than 15 characters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(context.Background(), tt.in)
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.message, err.Error())
		})
	}
	assert.Empty(t, env.pub.types())
}

func TestLogin(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	registered, err := env.auth.Register(ctx, RegisterInput{Email: "a@x.com", Password: "secret"})
	require.NoError(t, err)

	user, pair, err := env.auth.Login(ctx, "A@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	id, err := env.tokens.ValidateAccess(pair.Access.Value)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, id)

	stored, err := env.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
	assert.Contains(t, env.pub.types(), events.UserLoggedIn)
}

func TestLogin_Rejects(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterInput{Email: "a@x.com", Password: "secret"})
	require.NoError(t, err)
	inactive, err := env.auth.Register(ctx, RegisterInput{Email: "off@x.com", Password: "secret"})
	require.NoError(t, err)
	require.NoError(t, env.repo.DB.Model(inactive).Update("is_active", false).Error)

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "a@x.com", "nope"},
		{"unknown email", "ghost@x.com", "secret"},
		{"inactive", "off@x.com", "secret"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.auth.Login(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestRefreshAndLogout(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterInput{Email: "a@x.com", Password: "secret"})
	require.NoError(t, err)
	_, pair, err := env.auth.Login(ctx, "a@x.com", "secret")
	require.NoError(t, err)

	access, err := env.auth.Refresh(ctx, pair.Refresh.Value)
	require.NoError(t, err)
	assert.NotEmpty(t, access.Value)

	require.NoError(t, env.auth.Logout(ctx, pair.Refresh.Value))
	require.NoError(t, env.auth.Logout(ctx, pair.Refresh.Value), "second logout is a no-op")
	require.NoError(t, env.auth.Logout(ctx, ""))
	require.NoError(t, env.auth.Logout(ctx, "garbage"))

	_, err = env.auth.Refresh(ctx, pair.Refresh.Value)
	assert.ErrorIs(t, err, tokens.ErrRevokedToken)

	var logouts int
	for _, typ := range env.pub.types() {
		if typ == events.UserLoggedOut {
			logouts++
		}
	}
	assert.Equal(t, 1, logouts)
}

func TestPublishFailureDoesNotFailLogin(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.pub.err = errBroken
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterInput{Email: "a@x.com", Password: "secret"})
	require.NoError(t, err)
	_, _, err = env.auth.Login(ctx, "a@x.com", "secret")
	require.NoError(t, err)
}

func TestProfile(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, RegisterInput{Email: "a@x.com", Password: "secret"})
	require.NoError(t, err)

	first, phone := "Ann", "+123"
	updated, err := env.auth.UpdateProfile(ctx, user.ID, ProfileInput{FirstName: &first, PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Ann", updated.FirstName)
	assert.Equal(t, "+123", updated.PhoneNumber)

	long := strings.Repeat("x", 151)
	_, err = env.auth.UpdateProfile(ctx, user.ID, ProfileInput{LastName: &long})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := env.auth.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.FirstName)
	assert.Empty(t, got.LastName)

	_, err = env.auth.Profile(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateSuperuser(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	admin, err := env.auth.CreateSuperuser(ctx, "Root@X.com", "secret")
	require.NoError(t, err)
	assert.True(t, admin.IsStaff)
	assert.True(t, admin.IsSuperuser)
	assert.Equal(t, "root@x.com", admin.Email)

	_, err = env.auth.CreateSuperuser(ctx, "root@x.com", "secret")
	assert.ErrorIs(t, err, ErrConflict)
}
