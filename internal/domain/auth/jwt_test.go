package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/calendar"
	"shopledger/internal/core/id"
)

func TestJWTService_RoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := NewJWTService(DefaultJWTConfig("secret"), calendar.NewManualClock(now, nil))
	a := &Account{ID: id.New(), Username: "owner", Email: "owner@example.com"}

	token, expiresAt, err := svc.GenerateAccessToken(a, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(12*time.Hour), expiresAt)

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, a.ID, user.UserID)
	assert.Equal(t, "owner@example.com", user.Email)
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	now := time.Now()
	svc := NewJWTService(DefaultJWTConfig("secret"), nil)
	a := &Account{ID: id.New(), Username: "owner"}

	other := NewJWTService(DefaultJWTConfig("other-secret"), nil)
	token, _, err := other.GenerateAccessToken(a, now)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err, "wrong secret")

	cfg := DefaultJWTConfig("secret")
	cfg.Issuer = "someone-else"
	token, _, err = NewJWTService(cfg, nil).GenerateAccessToken(a, now)
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err, "wrong issuer")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{AccountID: a.ID.String()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	assert.Error(t, err, "unsigned")
}

func TestAccount_Lockout(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	a := &Account{IsActive: true}
	for range 2 {
		a.RecordFailedLogin(now, 3, time.Minute)
	}
	assert.NoError(t, a.CanLogin(now))

	a.RecordFailedLogin(now, 3, time.Minute)
	assert.Error(t, a.CanLogin(now))
	assert.Zero(t, a.FailedLoginAttempts)
	assert.NoError(t, a.CanLogin(now.Add(time.Minute)))

	a.IsActive = false
	assert.Error(t, a.CanLogin(now.Add(time.Hour)))
}
