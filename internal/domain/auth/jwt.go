package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"shopledger/internal/core/calendar"
	appctx "shopledger/internal/core/context"
	"shopledger/internal/core/id"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "shopledger",
		AccessTokenTTL: 12 * time.Hour,
	}
}

// Claims represents JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"uid"`
	Username  string `json:"usr"`
	Email     string `json:"email"`
}

// JWTService handles JWT operations.
type JWTService struct {
	config JWTConfig
	clock  calendar.Clock
}

// NewJWTService creates a new JWT service. Expiry is checked against clock.
func NewJWTService(config JWTConfig, clock calendar.Clock) *JWTService {
	if clock == nil {
		clock = calendar.NewSystemClock(time.UTC)
	}
	return &JWTService{config: config, clock: clock}
}

// GenerateAccessToken signs an HS256 token for the account.
func (s *JWTService) GenerateAccessToken(a *Account, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   a.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		AccountID: a.ID.String(),
		Username:  a.Username,
		Email:     a.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates JWT and returns the owner context.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	accountID, err := id.Parse(claims.AccountID)
	if err != nil {
		return nil, fmt.Errorf("invalid account id in token: %w", err)
	}

	return &appctx.UserContext{
		UserID:   accountID,
		Username: claims.Username,
		Email:    claims.Email,
	}, nil
}
