package memory

import (
	"context"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/customer"
	"shopledger/internal/domain/filter"
	"shopledger/internal/domain/ledger"
)

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	store *Store
}

// NewCustomerRepo creates a customer repository.
func NewCustomerRepo(store *Store) *CustomerRepo {
	return &CustomerRepo{store: store}
}

var customerOrder = map[string]func(a, b *customer.Customer) int{
	"first_name":      func(a, b *customer.Customer) int { return cmpString(a.FirstName, b.FirstName) },
	"last_name":       func(a, b *customer.Customer) int { return cmpString(a.LastName, b.LastName) },
	"phone":           func(a, b *customer.Customer) int { return cmpString(a.Phone, b.Phone) },
	"total_spent":     func(a, b *customer.Customer) int { return a.TotalSpent.Cmp(b.TotalSpent) },
	"total_purchases": func(a, b *customer.Customer) int { return a.TotalPurchases - b.TotalPurchases },
	"last_purchase":   func(a, b *customer.Customer) int { return cmpOptTime(a.LastPurchase, b.LastPurchase) },
	"created_at":      func(a, b *customer.Customer) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
}

func phoneTaken(t *tables, c *customer.Customer) bool {
	for _, other := range t.customers {
		if other.ID != c.ID && other.Phone == c.Phone {
			return true
		}
	}
	return false
}

func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	if phoneTaken(t, c) {
		return apperror.NewDuplicateCustomer(c.Phone)
	}
	t.customers[c.ID] = *c
	return nil
}

func (r *CustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	cur, ok := t.customers[c.ID]
	if !ok || cur.OwnerID != c.OwnerID {
		return apperror.NewNotFound("customer", c.ID)
	}
	if phoneTaken(t, c) {
		return apperror.NewDuplicateCustomer(c.Phone)
	}
	c.TotalPurchases = cur.TotalPurchases
	c.TotalSpent = cur.TotalSpent
	c.LastPurchase = cur.LastPurchase
	t.customers[c.ID] = *c
	return nil
}

func (r *CustomerRepo) UpdateStatistics(ctx context.Context, c *customer.Customer) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	cur, ok := t.customers[c.ID]
	if !ok || cur.OwnerID != c.OwnerID {
		return apperror.NewNotFound("customer", c.ID)
	}
	cur.TotalPurchases = c.TotalPurchases
	cur.TotalSpent = c.TotalSpent
	cur.LastPurchase = c.LastPurchase
	t.customers[c.ID] = cur
	return nil
}

func (r *CustomerRepo) Delete(ctx context.Context, ownerID, customerID id.ID) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	cur, ok := t.customers[customerID]
	if !ok || cur.OwnerID != ownerID {
		return apperror.NewNotFound("customer", customerID)
	}
	for sid, s := range t.sales {
		if s.CustomerID != nil && *s.CustomerID == customerID {
			t.deleteSale(sid)
		}
	}
	for pid, p := range t.purchases {
		if p.SupplierID != nil && *p.SupplierID == customerID {
			delete(t.purchases, pid)
		}
	}
	for did, d := range t.debts {
		if d.CustomerID == customerID {
			t.deleteDebt(did)
		}
	}
	delete(t.customers, customerID)
	return nil
}

func (r *CustomerRepo) GetByID(ctx context.Context, ownerID, customerID id.ID) (*customer.Customer, error) {
	defer r.store.guard(ctx)()
	c, ok := r.store.data.customers[customerID]
	if !ok || c.OwnerID != ownerID {
		return nil, apperror.NewNotFound("customer", customerID)
	}
	return &c, nil
}

// GetForUpdate is GetByID: the store lock already serializes writers.
func (r *CustomerRepo) GetForUpdate(ctx context.Context, ownerID, customerID id.ID) (*customer.Customer, error) {
	return r.GetByID(ctx, ownerID, customerID)
}

func (r *CustomerRepo) FindByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	defer r.store.guard(ctx)()
	for _, c := range r.store.data.customers {
		if c.Phone == phone {
			return &c, nil
		}
	}
	return nil, apperror.NewNotFound("customer", phone)
}

func (r *CustomerRepo) List(ctx context.Context, ownerID id.ID, f customer.Filter) (filter.ListResult[*customer.Customer], error) {
	defer r.store.guard(ctx)()
	var rows []*customer.Customer
	for _, c := range r.store.data.customers {
		if c.OwnerID != ownerID {
			continue
		}
		if f.Search != "" && !containsFold(c.FullName(), f.Search) && !containsFold(c.Phone, f.Search) &&
			!containsFold(optString(c.Email), f.Search) && !containsFold(optString(c.Company), f.Search) {
			continue
		}
		if f.CustomerType != "" && c.CustomerType != f.CustomerType {
			continue
		}
		if f.IsActive != nil && c.IsActive != *f.IsActive {
			continue
		}
		rows = append(rows, &c)
	}
	sortRows(rows, f.OrderBy, customerOrder, func(c *customer.Customer) id.ID { return c.ID })
	return page(rows, f.Page), nil
}

func (r *CustomerRepo) SalesSummary(ctx context.Context, ownerID, customerID id.ID) (customer.SalesSummary, error) {
	defer r.store.guard(ctx)()
	sum := customer.SalesSummary{Total: types.Zero()}
	for _, s := range r.store.data.sales {
		if s.OwnerID != ownerID || s.CustomerID == nil || *s.CustomerID != customerID {
			continue
		}
		if s.Status != ledger.SaleStatusCompleted {
			continue
		}
		sum.Count++
		sum.Total = sum.Total.Add(s.Total)
		if sum.LastPurchase == nil || s.SaleDate.After(*sum.LastPurchase) {
			at := s.SaleDate
			sum.LastPurchase = &at
		}
	}
	return sum, nil
}

func (r *CustomerRepo) DebtSummary(ctx context.Context, ownerID, customerID id.ID) (customer.DebtSummary, error) {
	defer r.store.guard(ctx)()
	sum := customer.DebtSummary{Total: types.Zero()}
	for _, d := range r.store.data.debts {
		if d.OwnerID != ownerID || d.CustomerID != customerID || !d.IsOpen() {
			continue
		}
		sum.Count++
		sum.Total = sum.Total.Add(d.Remaining())
	}
	return sum, nil
}
