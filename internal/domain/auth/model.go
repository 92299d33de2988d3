// Package auth provides owner accounts and access tokens.
package auth

import (
	"net/mail"
	"strings"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
)

// Account is a shop owner. Every shop record belongs to exactly one account.
type Account struct {
	ID                  id.ID      `db:"id" json:"id"`
	Username            string     `db:"username" json:"username"`
	Email               string     `db:"email" json:"email"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	IsActive            bool       `db:"is_active" json:"isActive"`
	LastLoginAt         *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `db:"locked_until" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updatedAt"`
}

// IsLocked returns true if the account is temporarily locked.
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

// CanLogin checks if the account may log in.
func (a *Account) CanLogin(now time.Time) error {
	if !a.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	if a.IsLocked(now) {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin counts a bad password and locks the account after maxAttempts.
func (a *Account) RecordFailedLogin(now time.Time, maxAttempts int, lockDuration time.Duration) {
	a.FailedLoginAttempts++
	a.UpdatedAt = now
	if a.FailedLoginAttempts >= maxAttempts {
		until := now.Add(lockDuration)
		a.LockedUntil = &until
		a.FailedLoginAttempts = 0
	}
}

// RecordSuccessfulLogin resets the failure counter.
func (a *Account) RecordSuccessfulLogin(now time.Time) {
	a.FailedLoginAttempts = 0
	a.LockedUntil = nil
	a.LastLoginAt = &now
	a.UpdatedAt = now
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// Credentials is the login payload. Login accepts a username or an email.
type Credentials struct {
	Login    string
	Password string
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func (r *RegisterRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *RegisterRequest) validate(minPassword int) error {
	if len(r.Username) < 3 {
		return apperror.NewValidation("username must be at least 3 characters").WithField("username", r.Username)
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return apperror.NewValidation("invalid email").WithField("email", r.Email)
	}
	if len(r.Password) < minPassword {
		return apperror.NewValidation("password is too short").
			WithField("password", nil).
			WithDetail("minLength", minPassword)
	}
	return nil
}
