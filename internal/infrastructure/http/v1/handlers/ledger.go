package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/ledger"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// LedgerHandler serves sales and purchases.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
	loc     *time.Location
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service, loc *time.Location) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: base,
		service:     service,
		loc:         loc,
	}
}

// --- Sales ---

// ListSales handles GET /sales
func (h *LedgerHandler) ListSales(c *gin.Context) {
	var q dto.SaleListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	f, err := q.ToFilter(h.loc)
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.ListSales(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, dto.FromSale))
}

// CreateSale handles POST /sales
func (h *LedgerHandler) CreateSale(c *gin.Context) {
	var req dto.SaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput(h.loc)
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.RecordSale(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromSale(sale))
}

// GetSale handles GET /sales/:id
func (h *LedgerHandler) GetSale(c *gin.Context) {
	saleID, ok := h.ParamID(c)
	if !ok {
		return
	}

	sale, err := h.service.GetSale(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSale(sale))
}

// DeleteSale handles DELETE /sales/:id
func (h *LedgerHandler) DeleteSale(c *gin.Context) {
	saleID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteSale(c.Request.Context(), saleID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// VoidSale handles POST /sales/:id/void
func (h *LedgerHandler) VoidSale(c *gin.Context) {
	saleID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.VoidSaleRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	sale, err := h.service.VoidSale(c.Request.Context(), saleID, req.TargetStatus())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSale(sale))
}

// --- Purchases ---

// ListPurchases handles GET /purchases
func (h *LedgerHandler) ListPurchases(c *gin.Context) {
	var q dto.PurchaseListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	f, err := q.ToFilter(h.loc)
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.ListPurchases(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, dto.FromPurchase))
}

// CreatePurchase handles POST /purchases
func (h *LedgerHandler) CreatePurchase(c *gin.Context) {
	var req dto.PurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput(h.loc)
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.service.RecordPurchase(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromPurchase(p))
}

// GetPurchase handles GET /purchases/:id
func (h *LedgerHandler) GetPurchase(c *gin.Context) {
	purchaseID, ok := h.ParamID(c)
	if !ok {
		return
	}

	p, err := h.service.GetPurchase(c.Request.Context(), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchase(p))
}

// DeletePurchase handles DELETE /purchases/:id
func (h *LedgerHandler) DeletePurchase(c *gin.Context) {
	purchaseID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.DeletePurchase(c.Request.Context(), purchaseID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// ChangePurchaseStatus handles POST /purchases/:id/status
func (h *LedgerHandler) ChangePurchaseStatus(c *gin.Context) {
	purchaseID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.PurchaseStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.ChangePurchaseStatus(c.Request.Context(), purchaseID, ledger.PurchaseStatus(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchase(p))
}
