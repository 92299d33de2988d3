package credit

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
	"shopledger/internal/domain/ledger"
	"shopledger/internal/domain/rollup"
	"shopledger/pkg/logger"
)

// Service runs the debt state machine.
type Service struct {
	repo      Repository
	txManager tx.Manager
	rollups   *rollup.Dispatcher
	clock     calendar.Clock
}

// NewService creates a new credit service.
func NewService(repo Repository, txManager tx.Manager, rollups *rollup.Dispatcher, clock calendar.Clock) *Service {
	if clock == nil {
		clock = calendar.NewSystemClock(time.UTC)
	}
	return &Service{
		repo:      repo,
		txManager: txManager,
		rollups:   rollups,
		clock:     clock,
	}
}

var _ ledger.DebtIssuer = (*Service)(nil)

// IssueForSale opens a debt for the full total of a credit sale, due TermDays later.
// Runs inside the sale transaction.
func (s *Service) IssueForSale(ctx context.Context, sale *ledger.Sale) error {
	if sale.CustomerID == nil {
		return apperror.NewValidation("credit sale requires a customer").WithField("customerId", nil)
	}
	saleID := sale.ID
	now := s.clock.Now()
	d := &Debt{
		ID:         id.New(),
		OwnerID:    sale.OwnerID,
		CustomerID: *sale.CustomerID,
		SaleID:     &saleID,
		Amount:     sale.Total,
		PaidAmount: types.Zero(),
		DueDate:    DueDateFor(sale.SaleDate, s.clock.Location()),
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if sale.Total.IsZero() {
		d.Status = StatusPaid
		d.PaidDate = &now
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return fmt.Errorf("create debt: %w", err)
	}
	logger.Info(ctx, "debt issued", "debt_id", d.ID, "sale_id", sale.ID, "amount", d.Amount, "due_date", d.DueDate)
	return nil
}

// CancelForSale cancels every open debt of a sale. Runs inside the caller's transaction.
// A debt that has taken any payment blocks the void: the shop has no refund
// record, so the collected money would vanish from the books.
func (s *Service) CancelForSale(ctx context.Context, saleID id.ID) error {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return err
	}
	debts, err := s.repo.ListBySaleForUpdate(ctx, ownerID, saleID)
	if err != nil {
		return fmt.Errorf("list sale debts: %w", err)
	}
	for _, d := range debts {
		if d.Status != StatusCancelled && d.PaidAmount.IsPositive() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "sale debt already has payments").
				WithField("debtId", d.ID.String()).
				WithDetail("paidAmount", d.PaidAmount.String())
		}
	}
	now := s.clock.Now()
	for _, d := range debts {
		if !d.IsOpen() {
			continue
		}
		if err := d.Cancel(now); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, d); err != nil {
			return fmt.Errorf("cancel debt: %w", err)
		}
	}
	return nil
}

// PaymentInput describes a payment against a debt.
type PaymentInput struct {
	Amount types.Money
	Method PaymentMethod
	Note   *string
}

// ApplyPayment books a payment under a row lock. Overpayment is rejected, so a
// paid debt refuses any further payment.
func (s *Service) ApplyPayment(ctx context.Context, debtID id.ID, in PaymentInput) (*Debt, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if in.Method == "" {
		in.Method = MethodCash
	}
	if !in.Method.Valid() {
		return nil, apperror.NewInvalidPayment("unknown payment method").WithField("method", string(in.Method))
	}

	var d *Debt
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.repo.GetForUpdate(ctx, ownerID, debtID)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		if err := locked.Apply(in.Amount, now); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, locked); err != nil {
			return fmt.Errorf("update debt: %w", err)
		}

		var note *string
		if in.Note != nil && strings.TrimSpace(*in.Note) != "" {
			note = in.Note
		}
		payment := &Payment{
			ID:      id.New(),
			OwnerID: ownerID,
			DebtID:  locked.ID,
			Amount:  in.Amount,
			Method:  in.Method,
			Note:    note,
			PaidAt:  now,
		}
		if err := s.repo.AddPayment(ctx, payment); err != nil {
			return fmt.Errorf("add payment: %w", err)
		}
		d = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "debt payment applied",
		"debt_id", d.ID,
		"amount", in.Amount,
		"method", in.Method,
		"status", d.Status,
		"remaining", d.Remaining(),
	)
	s.dispatch(ctx, rollup.CustomerStats(ownerID, d.CustomerID))
	return d, nil
}

// CancelDebt writes off a debt that is not paid.
func (s *Service) CancelDebt(ctx context.Context, debtID id.ID) (*Debt, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}

	var d *Debt
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.repo.GetForUpdate(ctx, ownerID, debtID)
		if err != nil {
			return err
		}
		if locked.Status == StatusCancelled {
			d = locked
			return nil
		}
		if err := locked.Cancel(s.clock.Now()); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, locked); err != nil {
			return fmt.Errorf("cancel debt: %w", err)
		}
		d = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "debt cancelled", "debt_id", d.ID)
	s.dispatch(ctx, rollup.CustomerStats(ownerID, d.CustomerID))
	return d, nil
}

// MarkOverdue moves pending debts with nothing paid and a past due date to overdue.
// Partially paid debts are left alone. Runs for every owner.
func (s *Service) MarkOverdue(ctx context.Context) (int64, error) {
	today := calendar.Today(s.clock)

	var n int64
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.repo.MarkOverdue(ctx, today)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("mark overdue: %w", err)
	}

	if n > 0 {
		logger.Info(ctx, "debts marked overdue", "count", n, "today", calendar.FormatDate(today))
	}
	return n, nil
}

// GetDebt returns a debt with its payments.
func (s *Service) GetDebt(ctx context.Context, debtID id.ID) (*Debt, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}
	d, err := s.repo.GetByID(ctx, ownerID, debtID)
	if err != nil {
		return nil, err
	}
	d.Payments, err = s.repo.ListPayments(ctx, ownerID, debtID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return d, nil
}

// ListDebts returns a page of debts, earliest due first by default.
func (s *Service) ListDebts(ctx context.Context, f DebtFilter) (filter.ListResult[*Debt], error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return filter.ListResult[*Debt]{}, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return filter.ListResult[*Debt]{}, apperror.NewValidation("unknown debt status").
			WithField("status", string(f.Status))
	}
	if f.Today.IsZero() {
		f.Today = calendar.Today(s.clock)
	}
	f.Page = f.Page.Normalize("due_date")
	return s.repo.List(ctx, ownerID, f)
}

// Today is the shop date used for overdue checks.
func (s *Service) Today() time.Time {
	return calendar.Today(s.clock)
}

// Location is the shop time zone.
func (s *Service) Location() *time.Location {
	return s.clock.Location()
}

func (s *Service) dispatch(ctx context.Context, jobs ...rollup.Job) {
	if s.rollups == nil {
		return
	}
	s.rollups.Dispatch(ctx, jobs...)
}
