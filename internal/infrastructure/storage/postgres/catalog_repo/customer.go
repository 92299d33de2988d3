package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/credit"
	"shopledger/internal/domain/customer"
	"shopledger/internal/domain/filter"
	"shopledger/internal/domain/ledger"
	"shopledger/internal/infrastructure/storage/postgres"
)

const customerPhoneKey = "customers_phone_key"

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	postgres.BaseRepo[customer.Customer]
}

var _ customer.Repository = (*CustomerRepo)(nil)

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txManager *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		BaseRepo: postgres.NewBaseRepo[customer.Customer](txManager, "customers", "customer",
			"first_name", "last_name", "phone", "total_spent", "total_purchases", "last_purchase", "created_at"),
	}
}

var customerEditable = []string{
	"first_name", "last_name", "phone", "email", "address", "birth_date", "gender",
	"company", "tax_id", "notes", "is_active", "customer_type", "updated_at",
}

var customerStatistics = []string{"total_purchases", "total_spent", "last_purchase", "updated_at"}

// phoneError turns a violation of the global phone constraint into DUPLICATE_CUSTOMER.
func phoneError(err error, phone string) error {
	if postgres.IsUniqueViolation(err, customerPhoneKey) {
		return apperror.NewDuplicateCustomer(phone).WithCause(err)
	}
	return err
}

func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	return phoneError(r.Insert(ctx, c), c.Phone)
}

// Update writes the editable columns and reloads the stored statistics into c.
func (r *CustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	sql, args, err := r.Builder().
		Update(r.Table).
		SetMap(postgres.SetMapFor(c, customerEditable)).
		Where(squirrel.Eq{"id": c.ID, "owner_id": c.OwnerID}).
		Suffix("RETURNING total_purchases, total_spent, last_purchase").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	err = r.Txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).
		Scan(&c.TotalPurchases, &c.TotalSpent, &c.LastPurchase)
	if err != nil {
		if postgres.IsNoRows(err) {
			return postgres.NotFound(err, r.Entity, c.ID)
		}
		return phoneError(postgres.MapError(fmt.Errorf("update customer: %w", err), r.Entity), c.Phone)
	}
	return nil
}

func (r *CustomerRepo) UpdateStatistics(ctx context.Context, c *customer.Customer) error {
	return r.UpdateColumns(ctx, c.ID, c.OwnerID, c, customerStatistics)
}

// Delete removes the customer. Sales, supplied purchases and debts reference
// customers ON DELETE CASCADE.
func (r *CustomerRepo) Delete(ctx context.Context, ownerID, customerID id.ID) error {
	q := r.Builder().
		Delete(r.Table).
		Where(squirrel.Eq{"id": customerID, "owner_id": ownerID})
	return r.ExecOne(ctx, q, customerID)
}

func (r *CustomerRepo) GetByID(ctx context.Context, ownerID, customerID id.ID) (*customer.Customer, error) {
	return r.FindByID(ctx, ownerID, customerID)
}

func (r *CustomerRepo) GetForUpdate(ctx context.Context, ownerID, customerID id.ID) (*customer.Customer, error) {
	return r.FindForUpdate(ctx, ownerID, customerID)
}

// FindByPhone is the one lookup that is not owner scoped: phones are unique
// across the whole directory.
func (r *CustomerRepo) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	q := r.Builder().
		Select(r.Columns...).
		From(r.Table).
		Where(squirrel.Eq{"phone": phone})
	return r.GetOne(ctx, q, phone)
}

func (r *CustomerRepo) List(ctx context.Context, ownerID id.ID, f customer.Filter) (filter.ListResult[*customer.Customer], error) {
	return r.Paginate(ctx, r.applyFilter(r.Select(ownerID), f), f.Page)
}

func (r *CustomerRepo) applyFilter(q squirrel.SelectBuilder, f customer.Filter) squirrel.SelectBuilder {
	if f.Search != "" {
		pattern := postgres.LikePattern(f.Search)
		q = q.Where(squirrel.Or{
			squirrel.Expr("TRIM(first_name || ' ' || last_name) ILIKE ?", pattern),
			squirrel.ILike{"phone": pattern},
			squirrel.ILike{"email": pattern},
			squirrel.ILike{"company": pattern},
		})
	}
	if f.CustomerType != "" {
		q = q.Where(squirrel.Eq{"customer_type": f.CustomerType})
	}
	if f.IsActive != nil {
		q = q.Where(squirrel.Eq{"is_active": *f.IsActive})
	}
	return q
}

func (r *CustomerRepo) SalesSummary(ctx context.Context, ownerID, customerID id.ID) (customer.SalesSummary, error) {
	sql, args, err := r.Builder().
		Select("COUNT(*) AS count", "COALESCE(SUM(total), 0) AS total", "MAX(sale_date) AS last_purchase").
		From("sales").
		Where(squirrel.Eq{
			"owner_id":    ownerID,
			"customer_id": customerID,
			"status":      ledger.SaleStatusCompleted,
		}).
		ToSql()
	if err != nil {
		return customer.SalesSummary{}, fmt.Errorf("build sales summary: %w", err)
	}
	sum := customer.SalesSummary{Total: types.Zero()}
	if err := pgxscan.Get(ctx, r.Txm.GetQuerier(ctx), &sum, sql, args...); err != nil {
		return customer.SalesSummary{}, fmt.Errorf("sales summary: %w", err)
	}
	return sum, nil
}

func (r *CustomerRepo) DebtSummary(ctx context.Context, ownerID, customerID id.ID) (customer.DebtSummary, error) {
	sql, args, err := r.Builder().
		Select("COALESCE(SUM(amount - paid_amount), 0) AS total", "COUNT(*) AS count").
		From("debts").
		Where(squirrel.Eq{"owner_id": ownerID, "customer_id": customerID}).
		Where(squirrel.NotEq{"status": []credit.Status{credit.StatusPaid, credit.StatusCancelled}}).
		ToSql()
	if err != nil {
		return customer.DebtSummary{}, fmt.Errorf("build debt summary: %w", err)
	}
	sum := customer.DebtSummary{Total: types.Zero()}
	if err := pgxscan.Get(ctx, r.Txm.GetQuerier(ctx), &sum, sql, args...); err != nil {
		return customer.DebtSummary{}, fmt.Errorf("debt summary: %w", err)
	}
	return sum, nil
}
