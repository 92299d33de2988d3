package customer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/calendar"
	appctx "shopledger/internal/core/context"
	"shopledger/internal/core/id"
	"shopledger/internal/core/tx"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/filter"
	"shopledger/internal/domain/rollup"
	"shopledger/pkg/logger"
)

// Service manages customers and their cached statistics.
type Service struct {
	repo      Repository
	txManager tx.Manager
	clock     calendar.Clock
}

// NewService creates the customer service and registers its rollup handler.
func NewService(repo Repository, txManager tx.Manager, rollups *rollup.Dispatcher, clock calendar.Clock) *Service {
	if clock == nil {
		clock = calendar.NewSystemClock(time.UTC)
	}
	s := &Service{
		repo:      repo,
		txManager: txManager,
		clock:     clock,
	}
	if rollups != nil {
		rollups.Register(rollup.KindCustomerStats, s.handleRollup)
	}
	return s
}

// Input carries writable customer fields.
type Input struct {
	FirstName    string
	LastName     string
	Phone        string
	Email        *string
	Address      *string
	BirthDate    *time.Time
	Gender       *Gender
	Company      *string
	TaxID        *string
	Notes        *string
	IsActive     *bool
	CustomerType Type
}

// Create stores a new customer with a normalized, globally unique phone.
func (s *Service) Create(ctx context.Context, in Input) (*Customer, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	c := &Customer{
		ID:         id.New(),
		OwnerID:    ownerID,
		IsActive:   true,
		TotalSpent: types.Zero(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := apply(c, in); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensurePhoneFree(ctx, c.Phone, c.ID); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, c); err != nil {
			return fmt.Errorf("create customer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "customer created", "customer_id", c.ID)
	return c, nil
}

// Update rewrites customer fields. Cached statistics are untouched.
func (s *Service) Update(ctx context.Context, customerID id.ID, in Input) (*Customer, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}

	var c *Customer
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, ownerID, customerID)
		if err != nil {
			return err
		}
		next := *current
		if err := apply(&next, in); err != nil {
			return err
		}
		next.UpdatedAt = s.clock.Now()

		if next.Phone != current.Phone {
			if err := s.ensurePhoneFree(ctx, next.Phone, next.ID); err != nil {
				return err
			}
		}
		if err := s.repo.Update(ctx, &next); err != nil {
			return fmt.Errorf("update customer: %w", err)
		}
		c = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a customer together with their sales, purchases and debts.
func (s *Service) Delete(ctx context.Context, customerID id.ID) error {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return err
	}
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetForUpdate(ctx, ownerID, customerID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, ownerID, customerID)
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "customer deleted", "customer_id", customerID)
	return nil
}

// Get returns a customer with the derived debt and loyalty fields.
func (s *Service) Get(ctx context.Context, customerID id.ID) (*Details, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.GetByID(ctx, ownerID, customerID)
	if err != nil {
		return nil, err
	}
	debt, err := s.repo.DebtSummary(ctx, ownerID, customerID)
	if err != nil {
		return nil, fmt.Errorf("debt summary: %w", err)
	}
	return &Details{
		Customer:    c,
		FullName:    c.FullName(),
		TotalDebt:   debt.Total,
		DebtCount:   debt.Count,
		LoyaltyTier: LoyaltyTier(c.TotalSpent),
	}, nil
}

// List returns a page of customers.
func (s *Service) List(ctx context.Context, f Filter) (filter.ListResult[*Customer], error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return filter.ListResult[*Customer]{}, err
	}
	f.Page = f.Page.Normalize("first_name")
	return s.repo.List(ctx, ownerID, f)
}

// EnsureCustomer fails with a validation error when the customer does not exist.
func (s *Service) EnsureCustomer(ctx context.Context, customerID id.ID) error {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return err
	}
	_, err = s.repo.GetByID(ctx, ownerID, customerID)
	if apperror.IsNotFound(err) {
		return apperror.NewValidation("customer not found").WithField("customerId", customerID.String())
	}
	return err
}

// RefreshStatistics recomputes total_purchases, total_spent and last_purchase from
// completed sales under a row lock. Total debt is derived and returned, not stored.
func (s *Service) RefreshStatistics(ctx context.Context, customerID id.ID) (*Statistics, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}

	var stats *Statistics
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetForUpdate(ctx, ownerID, customerID)
		if err != nil {
			return err
		}
		sales, err := s.repo.SalesSummary(ctx, ownerID, customerID)
		if err != nil {
			return fmt.Errorf("sales summary: %w", err)
		}
		debt, err := s.repo.DebtSummary(ctx, ownerID, customerID)
		if err != nil {
			return fmt.Errorf("debt summary: %w", err)
		}

		c.TotalPurchases = sales.Count
		c.TotalSpent = sales.Total
		c.LastPurchase = sales.LastPurchase
		if err := s.repo.UpdateStatistics(ctx, c); err != nil {
			return fmt.Errorf("update statistics: %w", err)
		}

		stats = &Statistics{
			CustomerID:     c.ID,
			TotalPurchases: c.TotalPurchases,
			TotalSpent:     c.TotalSpent,
			LastPurchase:   c.LastPurchase,
			TotalDebt:      debt.Total,
			DebtCount:      debt.Count,
			LoyaltyTier:    LoyaltyTier(c.TotalSpent),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *Service) handleRollup(ctx context.Context, job rollup.Job) error {
	ctx = appctx.WithOwner(ctx, job.OwnerID)
	_, err := s.RefreshStatistics(ctx, job.TargetID)
	if apperror.IsNotFound(err) {
		// customer deleted in the meantime
		return nil
	}
	return err
}

func (s *Service) ensurePhoneFree(ctx context.Context, phone string, self id.ID) error {
	existing, err := s.repo.FindByPhone(ctx, phone)
	if apperror.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find customer by phone: %w", err)
	}
	if existing.ID != self {
		return apperror.NewDuplicateCustomer(phone)
	}
	return nil
}

func apply(c *Customer, in Input) error {
	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		return err
	}
	c.FirstName = strings.TrimSpace(in.FirstName)
	c.LastName = strings.TrimSpace(in.LastName)
	c.Phone = phone
	c.Email = in.Email
	c.Address = in.Address
	c.BirthDate = in.BirthDate
	c.Gender = in.Gender
	c.Company = in.Company
	c.TaxID = in.TaxID
	c.Notes = in.Notes
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	c.CustomerType = in.CustomerType
	if c.CustomerType == "" {
		c.CustomerType = TypeRegular
	}
	return c.Validate()
}
