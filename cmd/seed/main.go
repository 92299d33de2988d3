// Package main provides a CLI tool for seeding a shop with an owner account
// and, on request, a small demo catalog.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"shopledger/internal/app"
	"shopledger/internal/config"
	"shopledger/internal/core/apperror"
	appctx "shopledger/internal/core/context"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/catalog"
	"shopledger/internal/domain/customer"
	"shopledger/internal/domain/filter"
	"shopledger/internal/domain/ledger"
	"shopledger/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()

	rt, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open storage", "error", err)
	}
	defer rt.Close()

	ownerID, err := seedOwner(ctx, rt.Services, log)
	if err != nil {
		log.Fatalw("failed to seed owner", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(appctx.WithOwner(ctx, ownerID), rt.Services, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedOwner(ctx context.Context, svc *app.Services, log *logger.Logger) (id.ID, error) {
	username := getEnv("SEED_USERNAME", "owner")
	email := getEnv("SEED_EMAIL", "owner@shopledger.local")
	password := getEnv("SEED_PASSWORD", "Owner123!")

	account, err := svc.Auth.Register(ctx, auth.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err == nil {
		log.Infow("owner account created", "username", username, "user_id", account.ID)
		return account.ID, nil
	}
	if !apperror.HasCode(err, apperror.CodeDuplicate) {
		return id.Nil(), fmt.Errorf("register owner: %w", err)
	}

	// Already there: the password must still match.
	_, account, err = svc.Auth.Login(ctx, auth.Credentials{Login: username, Password: password})
	if err != nil {
		return id.Nil(), fmt.Errorf("login existing owner: %w", err)
	}
	log.Infow("owner account already exists", "username", username, "user_id", account.ID)
	return account.ID, nil
}

type productSeed struct {
	name     string
	sku      string
	category string
	unit     catalog.Unit
	cost     string
	price    string
	qty      int64
	minQty   int64
}

func seedDemoData(ctx context.Context, svc *app.Services, log *logger.Logger) error {
	existing, err := svc.Catalog.ListProducts(ctx, catalog.ProductFilter{Page: filter.Page{Limit: 1}})
	if err != nil {
		return fmt.Errorf("check products: %w", err)
	}
	if existing.TotalCount > 0 {
		log.Infow("demo data already present, skipping", "products", existing.TotalCount)
		return nil
	}

	log.Info("seeding demo data...")

	groceries, err := svc.Catalog.CreateCategory(ctx, catalog.CategoryInput{Name: "Groceries", Icon: "basket", Color: "#4caf50"})
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	categories := map[string]id.ID{"Groceries": groceries.ID}
	for _, name := range []string{"Drinks", "Dairy"} {
		c, err := svc.Catalog.CreateCategory(ctx, catalog.CategoryInput{Name: name, ParentID: &groceries.ID})
		if err != nil {
			return fmt.Errorf("create category %s: %w", name, err)
		}
		categories[name] = c.ID
	}

	seeds := []productSeed{
		{"Green tea", "TEA-001", "Drinks", catalog.UnitPack, "12000", "18000", 40, 10},
		{"Mineral water", "WTR-001", "Drinks", catalog.UnitBottle, "2500", "4000", 120, 24},
		{"Milk 3.2%", "MLK-001", "Dairy", catalog.UnitLiter, "9000", "12500", 30, 10},
		{"Rice", "RCE-001", "Groceries", catalog.UnitKilogram, "14000", "17000", 8, 10},
	}
	products := make([]*catalog.Product, 0, len(seeds))
	for _, s := range seeds {
		categoryID := categories[s.category]
		qty, minQty := types.Qty(s.qty), types.Qty(s.minQty)
		p, err := svc.Catalog.CreateProduct(ctx, catalog.ProductInput{
			Name:          s.name,
			SKU:           s.sku,
			CategoryID:    &categoryID,
			Unit:          s.unit,
			PurchasePrice: types.MustMoney(s.cost),
			SalePrice:     types.MustMoney(s.price),
			Quantity:      &qty,
			MinQuantity:   &minQty,
		})
		if err != nil {
			return fmt.Errorf("create product %s: %w", s.sku, err)
		}
		products = append(products, p)
	}

	buyer, err := svc.Customers.Create(ctx, customer.Input{
		FirstName: "Aziz",
		LastName:  "Karimov",
		Phone:     "+998 90 123-45-67",
	})
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}

	if _, err := svc.Ledger.RecordPurchase(ctx, ledger.PurchaseInput{
		ProductID: products[3].ID,
		Quantity:  types.Qty(20),
		Price:     types.MustMoney("280000"),
		Status:    ledger.PurchaseStatusReceived,
	}); err != nil {
		return fmt.Errorf("record purchase: %w", err)
	}

	sales := []ledger.SaleInput{
		{ProductID: products[0].ID, Quantity: types.Qty(2), PaymentMethod: ledger.PaymentCash},
		{ProductID: products[1].ID, Quantity: types.Qty(6), PaymentMethod: ledger.PaymentCard},
		{ProductID: products[2].ID, CustomerID: &buyer.ID, Quantity: types.Qty(3), PaymentMethod: ledger.PaymentCredit},
	}
	for _, in := range sales {
		if _, err := svc.Ledger.RecordSale(ctx, in); err != nil {
			return fmt.Errorf("record sale: %w", err)
		}
	}

	log.Infow("demo data seeded",
		"categories", len(categories),
		"products", len(products),
		"sales", len(sales),
	)
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
