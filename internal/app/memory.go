package app

import "shopledger/internal/infrastructure/storage/memory"

// MemoryBackend builds a Backend on an in-process store.
func MemoryBackend(store *memory.Store) Backend {
	return Backend{
		TxManager:  memory.NewTxManager(store),
		Numerator:  memory.NewGenerator(store),
		Queue:      memory.NewQueue(store),
		Accounts:   memory.NewAccountRepo(store),
		Categories: memory.NewCategoryRepo(store),
		Products:   memory.NewProductRepo(store),
		History:    memory.NewHistoryStore(store),
		Customers:  memory.NewCustomerRepo(store),
		Sales:      memory.NewSaleRepo(store),
		Purchases:  memory.NewPurchaseRepo(store),
		Debts:      memory.NewDebtRepo(store),
		Dashboard:  memory.NewDashboardRepo(store),
		Reports:    memory.NewReportRepo(store),
	}
}
