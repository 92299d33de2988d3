package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/app/apptest"
	"shopledger/internal/core/apperror"
	"shopledger/internal/domain/auth"
)

func register(t *testing.T, env *apptest.Env) *auth.Account {
	t.Helper()
	a, err := env.Auth.Register(env.Ctx, auth.RegisterRequest{
		Username: " dilnoza ",
		Email:    "Dilnoza@Example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	return a
}

func TestRegister(t *testing.T) {
	env := apptest.New(t)
	a := register(t, env)

	assert.Equal(t, "dilnoza", a.Username)
	assert.Equal(t, "dilnoza@example.com", a.Email)
	assert.NotEqual(t, "s3cret-pass", a.PasswordHash)
	assert.True(t, a.IsActive)

	_, err := env.Auth.Register(env.Ctx, auth.RegisterRequest{Username: "dilnoza", Email: "other@example.com", Password: "s3cret-pass"})
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))

	_, err = env.Auth.Register(env.Ctx, auth.RegisterRequest{Username: "other", Email: "dilnoza@example.com", Password: "s3cret-pass"})
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))

	owners, err := env.Auth.Owners(env.Ctx)
	require.NoError(t, err)
	require.Len(t, owners, 1)
	assert.Equal(t, a.ID, owners[0])
}

func TestRegister_Validation(t *testing.T) {
	env := apptest.New(t)
	cases := map[string]auth.RegisterRequest{
		"short username": {Username: "ab", Email: "a@b.c", Password: "longenough"},
		"bad email":      {Username: "abc", Email: "not-an-email", Password: "longenough"},
		"short password": {Username: "abc", Email: "a@b.c", Password: "short"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.Auth.Register(env.Ctx, req)
			assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "%v", err)
		})
	}
}

func TestLogin_IssuesOwnerToken(t *testing.T) {
	env := apptest.New(t)
	a := register(t, env)

	for _, login := range []string{"dilnoza", "DILNOZA@example.com"} {
		token, account, err := env.Auth.Login(env.Ctx, auth.Credentials{Login: login, Password: "s3cret-pass"})
		require.NoError(t, err, login)
		assert.Equal(t, a.ID, account.ID)
		assert.Equal(t, "Bearer", token.TokenType)
		assert.Equal(t, apptest.Epoch.Add(12*time.Hour), token.ExpiresAt)

		user, err := env.JWT.ValidateToken(token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, a.ID, user.UserID)
		assert.Equal(t, "dilnoza", user.Username)
	}

	me, err := env.Auth.Me(env.Ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, me.LastLoginAt)
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	env := apptest.New(t)
	register(t, env)

	_, _, err := env.Auth.Login(env.Ctx, auth.Credentials{Login: "nobody", Password: "whatever"})
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))

	for range 5 {
		_, _, err = env.Auth.Login(env.Ctx, auth.Credentials{Login: "dilnoza", Password: "wrong-pass"})
		assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
	}

	_, _, err = env.Auth.Login(env.Ctx, auth.Credentials{Login: "dilnoza", Password: "s3cret-pass"})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), "locked account refuses even the right password")

	env.Clock.Advance(16 * time.Minute)
	_, _, err = env.Auth.Login(env.Ctx, auth.Credentials{Login: "dilnoza", Password: "s3cret-pass"})
	assert.NoError(t, err)
}

func TestValidateToken_Expiry(t *testing.T) {
	env := apptest.New(t)
	register(t, env)

	token, _, err := env.Auth.Login(env.Ctx, auth.Credentials{Login: "dilnoza", Password: "s3cret-pass"})
	require.NoError(t, err)

	env.Clock.Advance(13 * time.Hour)
	_, err = env.JWT.ValidateToken(token.AccessToken)
	assert.Error(t, err)
}
