package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/calendar"
	"shopledger/internal/core/id"
	"shopledger/internal/core/tx"
	"shopledger/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts  int
	LockDuration      time.Duration
	PasswordMinLength int
	BcryptCost        int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:  5,
		LockDuration:      15 * time.Minute,
		PasswordMinLength: 8,
		BcryptCost:        bcrypt.DefaultCost,
	}
}

// Service registers accounts and issues access tokens.
type Service struct {
	accounts   AccountRepository
	txManager  tx.Manager
	jwtService *JWTService
	config     ServiceConfig
	clock      calendar.Clock
}

// NewService creates a new auth service.
func NewService(
	accounts AccountRepository,
	txManager tx.Manager,
	jwtService *JWTService,
	config ServiceConfig,
	clock calendar.Clock,
) *Service {
	if clock == nil {
		clock = calendar.NewSystemClock(time.UTC)
	}
	return &Service{
		accounts:   accounts,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
		clock:      clock,
	}
}

// Register creates an account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Account, error) {
	req.normalize()
	if err := req.validate(s.config.PasswordMinLength); err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now()
	account := &Account{
		ID:           id.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.accounts.GetByUsername(ctx, account.Username); err == nil {
			return apperror.NewDuplicate("account", "username", account.Username)
		} else if !apperror.IsNotFound(err) {
			return fmt.Errorf("check username: %w", err)
		}
		if _, err := s.accounts.GetByEmail(ctx, account.Email); err == nil {
			return apperror.NewDuplicate("account", "email", account.Email)
		} else if !apperror.IsNotFound(err) {
			return fmt.Errorf("check email: %w", err)
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "account registered", "account_id", account.ID, "username", account.Username)
	return account, nil
}

// Login checks credentials and returns an access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, *Account, error) {
	login := strings.TrimSpace(creds.Login)
	var (
		account *Account
		err     error
	)
	if strings.Contains(login, "@") {
		account, err = s.accounts.GetByEmail(ctx, strings.ToLower(login))
	} else {
		account, err = s.accounts.GetByUsername(ctx, login)
	}
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, nil, fmt.Errorf("find account: %w", err)
	}

	now := s.clock.Now()
	if err := account.CanLogin(now); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(creds.Password)); err != nil {
		account.RecordFailedLogin(now, s.config.MaxLoginAttempts, s.config.LockDuration)
		if uerr := s.accounts.Update(ctx, account); uerr != nil {
			logger.Warn(ctx, "failed to record failed login", "account_id", account.ID, "error", uerr)
		}
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	account.RecordSuccessfulLogin(now)
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, nil, fmt.Errorf("update account: %w", err)
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(account, now)
	if err != nil {
		return nil, nil, err
	}

	logger.Info(ctx, "account logged in", "account_id", account.ID)
	return &Token{AccessToken: accessToken, TokenType: "Bearer", ExpiresAt: expiresAt}, account, nil
}

// Me returns the account behind an owner id.
func (s *Service) Me(ctx context.Context, accountID id.ID) (*Account, error) {
	return s.accounts.GetByID(ctx, accountID)
}

// Owners lists the active account ids.
func (s *Service) Owners(ctx context.Context) ([]id.ID, error) {
	return s.accounts.ListActiveIDs(ctx)
}
