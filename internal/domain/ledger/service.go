package ledger

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/calendar"
	appctx "shopledger/internal/core/context"
	"shopledger/internal/core/id"
	"shopledger/internal/core/numerator"
	"shopledger/internal/core/tx"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalog"
	"shopledger/internal/domain/filter"
	"shopledger/internal/domain/rollup"
	"shopledger/pkg/logger"
)

var tracer = otel.Tracer("shopledger/ledger")

// Inventory is the catalog surface the ledger writes through.
// Every method runs inside the caller's transaction.
type Inventory interface {
	LockProduct(ctx context.Context, productID id.ID) (*catalog.Product, error)
	ApplyStockDelta(ctx context.Context, productID id.ID, delta types.Quantity) (*catalog.Product, error)
	AddSaleTotals(ctx context.Context, productID id.ID, qty types.Quantity, revenue types.Money) error
}

// Customers checks customer references.
type Customers interface {
	EnsureCustomer(ctx context.Context, customerID id.ID) error
}

// DebtIssuer opens and cancels the debts of credit sales inside the sale transaction.
type DebtIssuer interface {
	IssueForSale(ctx context.Context, sale *Sale) error
	CancelForSale(ctx context.Context, saleID id.ID) error
}

// ServiceConfig holds the collaborators of Service.
type ServiceConfig struct {
	Sales     SaleRepository
	Purchases PurchaseRepository
	Inventory Inventory
	Customers Customers
	Debts     DebtIssuer
	Numerator numerator.Generator
	TxManager tx.Manager
	Rollups   *rollup.Dispatcher
	Clock     calendar.Clock
}

// Service records sales and purchases.
type Service struct {
	sales     SaleRepository
	purchases PurchaseRepository
	inventory Inventory
	customers Customers
	debts     DebtIssuer
	numerator numerator.Generator
	txManager tx.Manager
	rollups   *rollup.Dispatcher
	clock     calendar.Clock
}

// NewService creates a new ledger service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Clock == nil {
		cfg.Clock = calendar.NewSystemClock(time.UTC)
	}
	return &Service{
		sales:     cfg.Sales,
		purchases: cfg.Purchases,
		inventory: cfg.Inventory,
		customers: cfg.Customers,
		debts:     cfg.Debts,
		numerator: cfg.Numerator,
		txManager: cfg.TxManager,
		rollups:   cfg.Rollups,
		clock:     cfg.Clock,
	}
}

// SaleInput describes a sale to record. Price defaults to the product's sale price.
type SaleInput struct {
	ProductID     id.ID
	CustomerID    *id.ID
	Quantity      types.Quantity
	Price         *types.Money
	Discount      types.Money
	Tax           types.Money
	PaymentMethod PaymentMethod
	Notes         *string
	SaleDate      *time.Time
}

// RecordSale persists a sale, takes the stock and opens a debt for credit sales,
// all in one transaction. Statistic refreshes run after commit.
func (s *Service) RecordSale(ctx context.Context, in SaleInput) (*Sale, error) {
	ctx, span := tracer.Start(ctx, "ledger.RecordSale",
		trace.WithAttributes(attribute.String("product_id", in.ProductID.String())))
	defer span.End()

	sale, category, err := s.recordSale(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("invoice_number", sale.InvoiceNumber))

	logger.Info(ctx, "sale recorded",
		"sale_id", sale.ID,
		"invoice_number", sale.InvoiceNumber,
		"total", sale.Total,
		"payment_method", sale.PaymentMethod,
	)
	s.dispatchAfterSale(ctx, sale, category)
	return sale, nil
}

func (s *Service) recordSale(ctx context.Context, in SaleInput) (*Sale, *id.ID, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := validateQuantity("quantity", in.Quantity); err != nil {
		return nil, nil, err
	}
	if err := validateAmount("discount", in.Discount); err != nil {
		return nil, nil, err
	}
	if err := validateAmount("tax", in.Tax); err != nil {
		return nil, nil, err
	}
	if in.Price != nil {
		if err := validateAmount("price", *in.Price); err != nil {
			return nil, nil, err
		}
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = PaymentCash
	}
	if !in.PaymentMethod.Valid() {
		return nil, nil, apperror.NewValidation("unknown payment method").
			WithField("paymentMethod", string(in.PaymentMethod))
	}
	if in.PaymentMethod == PaymentCredit && in.CustomerID == nil {
		return nil, nil, apperror.NewValidation("credit sale requires a customer").
			WithField("customerId", nil)
	}

	now := s.clock.Now()
	saleDate := now
	if in.SaleDate != nil {
		saleDate = in.SaleDate.In(s.clock.Location())
	}

	var (
		sale     *Sale
		category *id.ID
	)
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if in.CustomerID != nil {
			if err := s.customers.EnsureCustomer(ctx, *in.CustomerID); err != nil {
				return err
			}
		}

		product, err := s.inventory.LockProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}
		category = product.CategoryID

		if in.Quantity.GreaterThan(product.Quantity) {
			return apperror.NewOutOfStock(product.ID.String(), in.Quantity.String(), product.Quantity.String())
		}

		price := product.SalePrice
		if in.Price != nil {
			price = *in.Price
		}
		total := SaleTotal(in.Quantity, price, in.Discount, in.Tax)
		if total.IsNegative() {
			return apperror.NewValidation("discount exceeds sale amount").
				WithField("discount", in.Discount.String())
		}

		invoice, err := numerator.Next(ctx, s.numerator, numerator.InvoiceConfig(ownerID.String()), saleDate)
		if err != nil {
			return fmt.Errorf("generate invoice number: %w", err)
		}

		paid := total
		if in.PaymentMethod == PaymentCredit {
			paid = types.Zero()
		}

		sale = &Sale{
			ID:            id.New(),
			OwnerID:       ownerID,
			ProductID:     product.ID,
			CustomerID:    in.CustomerID,
			Quantity:      in.Quantity,
			Price:         price,
			Discount:      in.Discount,
			Tax:           in.Tax,
			Total:         total,
			PaymentMethod: in.PaymentMethod,
			PaidAmount:    paid,
			InvoiceNumber: invoice,
			Status:        SaleStatusCompleted,
			Notes:         trimmed(in.Notes),
			SaleDate:      saleDate,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.sales.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}

		if _, err := s.inventory.ApplyStockDelta(ctx, product.ID, in.Quantity.Neg()); err != nil {
			return err
		}
		if err := s.inventory.AddSaleTotals(ctx, product.ID, in.Quantity, total); err != nil {
			return err
		}

		if in.PaymentMethod == PaymentCredit {
			if err := s.debts.IssueForSale(ctx, sale); err != nil {
				return fmt.Errorf("issue debt: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return sale, category, nil
}

// VoidSale cancels or refunds a completed sale: stock returns, product totals are
// reversed and open debts of the sale are cancelled.
func (s *Service) VoidSale(ctx context.Context, saleID id.ID, status SaleStatus) (*Sale, error) {
	ctx, span := tracer.Start(ctx, "ledger.VoidSale",
		trace.WithAttributes(attribute.String("sale_id", saleID.String())))
	defer span.End()

	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if status != SaleStatusCancelled && status != SaleStatusRefunded {
		return nil, apperror.NewValidation("sale can only be voided as cancelled or refunded").
			WithField("status", string(status))
	}

	var (
		sale     *Sale
		category *id.ID
	)
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.sales.GetForUpdate(ctx, ownerID, saleID)
		if err != nil {
			return err
		}
		if locked.Status != SaleStatusCompleted {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "only completed sales can be voided").
				WithField("status", string(locked.Status))
		}

		product, err := s.inventory.ApplyStockDelta(ctx, locked.ProductID, locked.Quantity)
		if err != nil {
			return err
		}
		category = product.CategoryID

		if err := s.inventory.AddSaleTotals(ctx, locked.ProductID, locked.Quantity.Neg(), locked.Total.Neg()); err != nil {
			return err
		}
		if err := s.debts.CancelForSale(ctx, locked.ID); err != nil {
			return fmt.Errorf("cancel sale debts: %w", err)
		}

		locked.Status = status
		locked.UpdatedAt = s.clock.Now()
		if err := s.sales.UpdateStatus(ctx, locked); err != nil {
			return fmt.Errorf("update sale status: %w", err)
		}
		sale = locked
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Info(ctx, "sale voided", "sale_id", sale.ID, "status", sale.Status)
	s.dispatchAfterSale(ctx, sale, category)
	return sale, nil
}

// DeleteSale removes a sale and its debts. Stock is not reversed; use VoidSale for that.
func (s *Service) DeleteSale(ctx context.Context, saleID id.ID) error {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return err
	}

	var customer *id.ID
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sale, err := s.sales.GetForUpdate(ctx, ownerID, saleID)
		if err != nil {
			return err
		}
		customer = sale.CustomerID
		return s.sales.Delete(ctx, ownerID, saleID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale deleted", "sale_id", saleID)
	if customer != nil {
		s.dispatch(ctx, rollup.CustomerStats(ownerID, *customer))
	}
	return nil
}

// GetSale returns one sale.
func (s *Service) GetSale(ctx context.Context, saleID id.ID) (*Sale, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}
	return s.sales.GetByID(ctx, ownerID, saleID)
}

// ListSales returns a page of sales, newest first by default.
func (s *Service) ListSales(ctx context.Context, f SaleFilter) (filter.ListResult[*Sale], error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return filter.ListResult[*Sale]{}, err
	}
	f.Page = f.Page.Normalize("-sale_date")
	return s.sales.List(ctx, ownerID, f)
}

// PurchaseInput describes a purchase to record.
type PurchaseInput struct {
	ProductID     id.ID
	SupplierID    *id.ID
	Quantity      types.Quantity
	Price         types.Money
	Status        PurchaseStatus
	InvoiceNumber *string
	DeliveryDate  *time.Time
	ExpiryDate    *time.Time
	Notes         *string
	PurchaseDate  *time.Time
}

// RecordPurchase persists a purchase. Only a received purchase increases stock.
func (s *Service) RecordPurchase(ctx context.Context, in PurchaseInput) (*Purchase, error) {
	ctx, span := tracer.Start(ctx, "ledger.RecordPurchase",
		trace.WithAttributes(attribute.String("product_id", in.ProductID.String())))
	defer span.End()

	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = PurchaseStatusPending
	}
	if !in.Status.Valid() {
		return nil, apperror.NewValidation("unknown purchase status").WithField("status", string(in.Status))
	}
	if err := validateQuantity("quantity", in.Quantity); err != nil {
		return nil, err
	}
	if err := validateAmount("price", in.Price); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	purchaseDate := now
	if in.PurchaseDate != nil {
		purchaseDate = in.PurchaseDate.In(s.clock.Location())
	}

	var (
		p        *Purchase
		category *id.ID
	)
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if in.SupplierID != nil {
			if err := s.customers.EnsureCustomer(ctx, *in.SupplierID); err != nil {
				return err
			}
		}
		product, err := s.inventory.LockProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}

		p = &Purchase{
			ID:            id.New(),
			OwnerID:       ownerID,
			ProductID:     product.ID,
			SupplierID:    in.SupplierID,
			Quantity:      in.Quantity,
			Price:         in.Price,
			Total:         PurchaseTotal(in.Quantity, in.Price),
			InvoiceNumber: trimmed(in.InvoiceNumber),
			DeliveryDate:  in.DeliveryDate,
			ExpiryDate:    in.ExpiryDate,
			Status:        in.Status,
			Notes:         trimmed(in.Notes),
			PurchaseDate:  purchaseDate,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if p.Status == PurchaseStatusReceived {
			p.ReceivedAt = &now
			category = product.CategoryID
		}
		if err := s.purchases.Create(ctx, p); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		if p.Status == PurchaseStatusReceived {
			if _, err := s.inventory.ApplyStockDelta(ctx, product.ID, p.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Info(ctx, "purchase recorded", "purchase_id", p.ID, "status", p.Status, "total", p.Total)
	if category != nil {
		s.dispatch(ctx, rollup.CategoryRollup(ownerID, *category))
	}
	return p, nil
}

// ChangePurchaseStatus moves a purchase through pending → received → cancelled.
// The stock increment of receiving is applied exactly once; cancelling a received
// purchase takes it back. Cancelled is terminal and an unchanged status is a no-op.
func (s *Service) ChangePurchaseStatus(ctx context.Context, purchaseID id.ID, status PurchaseStatus) (*Purchase, error) {
	ctx, span := tracer.Start(ctx, "ledger.ChangePurchaseStatus",
		trace.WithAttributes(
			attribute.String("purchase_id", purchaseID.String()),
			attribute.String("status", string(status)),
		))
	defer span.End()

	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperror.NewValidation("unknown purchase status").WithField("status", string(status))
	}

	var (
		p        *Purchase
		category *id.ID
	)
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.purchases.GetForUpdate(ctx, ownerID, purchaseID)
		if err != nil {
			return err
		}
		p = locked
		if locked.Status == status {
			return nil
		}

		var delta types.Quantity
		switch {
		case locked.Status == PurchaseStatusCancelled:
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "cancelled purchase cannot change status").
				WithField("status", string(status))
		case status == PurchaseStatusReceived:
			if locked.ReceivedAt == nil {
				delta = locked.Quantity
				now := s.clock.Now()
				locked.ReceivedAt = &now
			}
		case status == PurchaseStatusCancelled:
			if locked.Status == PurchaseStatusReceived && locked.ReceivedAt != nil {
				delta = locked.Quantity.Neg()
			}
		default:
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "received purchase cannot return to pending").
				WithField("status", string(status))
		}

		if !delta.IsZero() {
			product, err := s.inventory.ApplyStockDelta(ctx, locked.ProductID, delta)
			if err != nil {
				return err
			}
			category = product.CategoryID
		}

		locked.Status = status
		locked.UpdatedAt = s.clock.Now()
		if err := s.purchases.UpdateStatus(ctx, locked); err != nil {
			return fmt.Errorf("update purchase status: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Info(ctx, "purchase status changed", "purchase_id", p.ID, "status", p.Status)
	if category != nil {
		s.dispatch(ctx, rollup.CategoryRollup(ownerID, *category))
	}
	return p, nil
}

// DeletePurchase removes a purchase. Stock is not reversed.
func (s *Service) DeletePurchase(ctx context.Context, purchaseID id.ID) error {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return err
	}
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.purchases.GetForUpdate(ctx, ownerID, purchaseID); err != nil {
			return err
		}
		return s.purchases.Delete(ctx, ownerID, purchaseID)
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "purchase deleted", "purchase_id", purchaseID)
	return nil
}

// GetPurchase returns one purchase.
func (s *Service) GetPurchase(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return nil, err
	}
	return s.purchases.GetByID(ctx, ownerID, purchaseID)
}

// ListPurchases returns a page of purchases, newest first by default.
func (s *Service) ListPurchases(ctx context.Context, f PurchaseFilter) (filter.ListResult[*Purchase], error) {
	ownerID, err := appctx.RequireOwner(ctx)
	if err != nil {
		return filter.ListResult[*Purchase]{}, err
	}
	f.Page = f.Page.Normalize("-purchase_date")
	return s.purchases.List(ctx, ownerID, f)
}

func (s *Service) dispatchAfterSale(ctx context.Context, sale *Sale, category *id.ID) {
	jobs := make([]rollup.Job, 0, 2)
	if sale.CustomerID != nil {
		jobs = append(jobs, rollup.CustomerStats(sale.OwnerID, *sale.CustomerID))
	}
	if category != nil {
		jobs = append(jobs, rollup.CategoryRollup(sale.OwnerID, *category))
	}
	s.dispatch(ctx, jobs...)
}

func (s *Service) dispatch(ctx context.Context, jobs ...rollup.Job) {
	if s.rollups == nil || len(jobs) == 0 {
		return
	}
	s.rollups.Dispatch(ctx, jobs...)
}
