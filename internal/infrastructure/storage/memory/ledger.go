package memory

import (
	"context"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/filter"
	"shopledger/internal/domain/ledger"
)

// deleteSale removes a sale with its debts and their payments.
func (t *tables) deleteSale(saleID id.ID) {
	for did, d := range t.debts {
		if d.SaleID != nil && *d.SaleID == saleID {
			t.deleteDebt(did)
		}
	}
	delete(t.sales, saleID)
}

func (t *tables) deleteDebt(debtID id.ID) {
	kept := t.payments[:0]
	for _, p := range t.payments {
		if p.DebtID != debtID {
			kept = append(kept, p)
		}
	}
	t.payments = kept
	delete(t.debts, debtID)
}

// SaleRepo implements ledger.SaleRepository.
type SaleRepo struct {
	store *Store
}

// NewSaleRepo creates a sale repository.
func NewSaleRepo(store *Store) *SaleRepo {
	return &SaleRepo{store: store}
}

var saleOrder = map[string]func(a, b *ledger.Sale) int{
	"sale_date":      func(a, b *ledger.Sale) int { return cmpTime(a.SaleDate, b.SaleDate) },
	"total":          func(a, b *ledger.Sale) int { return a.Total.Cmp(b.Total) },
	"quantity":       func(a, b *ledger.Sale) int { return a.Quantity.Cmp(b.Quantity) },
	"invoice_number": func(a, b *ledger.Sale) int { return cmpString(a.InvoiceNumber, b.InvoiceNumber) },
	"created_at":     func(a, b *ledger.Sale) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
}

func (r *SaleRepo) Create(ctx context.Context, s *ledger.Sale) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	for _, other := range t.sales {
		if other.OwnerID == s.OwnerID && other.InvoiceNumber == s.InvoiceNumber {
			return apperror.NewConflict("invoice number already taken, retry the sale").
				WithField("invoiceNumber", s.InvoiceNumber)
		}
	}
	t.sales[s.ID] = *s
	return nil
}

func (r *SaleRepo) UpdateStatus(ctx context.Context, s *ledger.Sale) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	cur, ok := t.sales[s.ID]
	if !ok || cur.OwnerID != s.OwnerID {
		return apperror.NewNotFound("sale", s.ID)
	}
	cur.Status = s.Status
	cur.PaidAmount = s.PaidAmount
	cur.UpdatedAt = s.UpdatedAt
	t.sales[s.ID] = cur
	return nil
}

func (r *SaleRepo) Delete(ctx context.Context, ownerID, saleID id.ID) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	cur, ok := t.sales[saleID]
	if !ok || cur.OwnerID != ownerID {
		return apperror.NewNotFound("sale", saleID)
	}
	t.deleteSale(saleID)
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, ownerID, saleID id.ID) (*ledger.Sale, error) {
	defer r.store.guard(ctx)()
	s, ok := r.store.data.sales[saleID]
	if !ok || s.OwnerID != ownerID {
		return nil, apperror.NewNotFound("sale", saleID)
	}
	return &s, nil
}

// GetForUpdate is GetByID: the store lock already serializes writers.
func (r *SaleRepo) GetForUpdate(ctx context.Context, ownerID, saleID id.ID) (*ledger.Sale, error) {
	return r.GetByID(ctx, ownerID, saleID)
}

func (r *SaleRepo) List(ctx context.Context, ownerID id.ID, f ledger.SaleFilter) (filter.ListResult[*ledger.Sale], error) {
	defer r.store.guard(ctx)()
	var rows []*ledger.Sale
	for _, s := range r.store.data.sales {
		if s.OwnerID != ownerID || !f.Contains(s.SaleDate) {
			continue
		}
		if f.ProductID != nil && s.ProductID != *f.ProductID {
			continue
		}
		if f.CustomerID != nil && !id.Equal(s.CustomerID, f.CustomerID) {
			continue
		}
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.PaymentMethod != "" && s.PaymentMethod != f.PaymentMethod {
			continue
		}
		rows = append(rows, &s)
	}
	sortRows(rows, f.OrderBy, saleOrder, func(s *ledger.Sale) id.ID { return s.ID })
	return page(rows, f.Page), nil
}

// PurchaseRepo implements ledger.PurchaseRepository.
type PurchaseRepo struct {
	store *Store
}

// NewPurchaseRepo creates a purchase repository.
func NewPurchaseRepo(store *Store) *PurchaseRepo {
	return &PurchaseRepo{store: store}
}

var purchaseOrder = map[string]func(a, b *ledger.Purchase) int{
	"purchase_date": func(a, b *ledger.Purchase) int { return cmpTime(a.PurchaseDate, b.PurchaseDate) },
	"total":         func(a, b *ledger.Purchase) int { return a.Total.Cmp(b.Total) },
	"quantity":      func(a, b *ledger.Purchase) int { return a.Quantity.Cmp(b.Quantity) },
	"received_at":   func(a, b *ledger.Purchase) int { return cmpOptTime(a.ReceivedAt, b.ReceivedAt) },
	"created_at":    func(a, b *ledger.Purchase) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
}

func (r *PurchaseRepo) Create(ctx context.Context, p *ledger.Purchase) error {
	defer r.store.guard(ctx)()
	r.store.data.purchases[p.ID] = *p
	return nil
}

func (r *PurchaseRepo) UpdateStatus(ctx context.Context, p *ledger.Purchase) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	cur, ok := t.purchases[p.ID]
	if !ok || cur.OwnerID != p.OwnerID {
		return apperror.NewNotFound("purchase", p.ID)
	}
	cur.Status = p.Status
	cur.ReceivedAt = p.ReceivedAt
	cur.UpdatedAt = p.UpdatedAt
	t.purchases[p.ID] = cur
	return nil
}

func (r *PurchaseRepo) Delete(ctx context.Context, ownerID, purchaseID id.ID) error {
	defer r.store.guard(ctx)()
	t := r.store.data
	cur, ok := t.purchases[purchaseID]
	if !ok || cur.OwnerID != ownerID {
		return apperror.NewNotFound("purchase", purchaseID)
	}
	delete(t.purchases, purchaseID)
	return nil
}

func (r *PurchaseRepo) GetByID(ctx context.Context, ownerID, purchaseID id.ID) (*ledger.Purchase, error) {
	defer r.store.guard(ctx)()
	p, ok := r.store.data.purchases[purchaseID]
	if !ok || p.OwnerID != ownerID {
		return nil, apperror.NewNotFound("purchase", purchaseID)
	}
	return &p, nil
}

// GetForUpdate is GetByID: the store lock already serializes writers.
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, ownerID, purchaseID id.ID) (*ledger.Purchase, error) {
	return r.GetByID(ctx, ownerID, purchaseID)
}

func (r *PurchaseRepo) List(ctx context.Context, ownerID id.ID, f ledger.PurchaseFilter) (filter.ListResult[*ledger.Purchase], error) {
	defer r.store.guard(ctx)()
	var rows []*ledger.Purchase
	for _, p := range r.store.data.purchases {
		if p.OwnerID != ownerID || !f.Contains(p.PurchaseDate) {
			continue
		}
		if f.ProductID != nil && p.ProductID != *f.ProductID {
			continue
		}
		if f.SupplierID != nil && !id.Equal(p.SupplierID, f.SupplierID) {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		rows = append(rows, &p)
	}
	sortRows(rows, f.OrderBy, purchaseOrder, func(p *ledger.Purchase) id.ID { return p.ID })
	return page(rows, f.Page), nil
}
