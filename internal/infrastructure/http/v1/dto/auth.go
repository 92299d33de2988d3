package dto

import (
	"shopledger/internal/domain/auth"
)

// RegisterRequest for account registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ToAuthRequest converts to domain request.
func (r *RegisterRequest) ToAuthRequest() auth.RegisterRequest {
	return auth.RegisterRequest{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
	}
}

// LoginRequest accepts a username or an email in Login.
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{
		Login:    r.Login,
		Password: r.Password,
	}
}

// LoginResponse contains the access token and the account.
type LoginResponse struct {
	Token   *auth.Token   `json:"token"`
	Account *auth.Account `json:"account"`
}
