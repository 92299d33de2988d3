// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
)

// UserContext contains the authenticated account. Every shop record is owned by
// exactly one account, so the account id doubles as the owner scope.
type UserContext struct {
	UserID   id.ID
	Username string
	Email    string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// WithOwner is a shortcut for background jobs that only know the owner id.
func WithOwner(ctx context.Context, ownerID id.ID) context.Context {
	return WithUser(ctx, &UserContext{UserID: ownerID})
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetOwnerID returns the owning account id or id.Nil.
func GetOwnerID(ctx context.Context) id.ID {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return id.Nil()
}

// RequireOwner returns the owning account id, failing when the request is anonymous.
func RequireOwner(ctx context.Context) (id.ID, error) {
	ownerID := GetOwnerID(ctx)
	if id.IsNil(ownerID) {
		return ownerID, apperror.NewUnauthorized("owning account is required")
	}
	return ownerID, nil
}
