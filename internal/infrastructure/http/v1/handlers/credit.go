package handlers

import (
	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/credit"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// CreditHandler serves debts and payments.
type CreditHandler struct {
	*BaseHandler
	service *credit.Service
}

// NewCreditHandler creates a new credit handler.
func NewCreditHandler(base *BaseHandler, service *credit.Service) *CreditHandler {
	return &CreditHandler{
		BaseHandler: base,
		service:     service,
	}
}

func (h *CreditHandler) mapper() func(*credit.Debt) dto.DebtResponse {
	return dto.DebtMapper(h.service.Today(), h.service.Location())
}

// List handles GET /debts
func (h *CreditHandler) List(c *gin.Context) {
	var q dto.DebtListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	f, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.ListDebts(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, h.mapper()))
}

// Get handles GET /debts/:id
func (h *CreditHandler) Get(c *gin.Context) {
	debtID, ok := h.ParamID(c)
	if !ok {
		return
	}

	d, err := h.service.GetDebt(c.Request.Context(), debtID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, h.mapper()(d))
}

// ApplyPayment handles POST /debts/:id/payments
func (h *CreditHandler) ApplyPayment(c *gin.Context) {
	debtID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	d, err := h.service.ApplyPayment(c.Request.Context(), debtID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, h.mapper()(d))
}

// Cancel handles POST /debts/:id/cancel
func (h *CreditHandler) Cancel(c *gin.Context) {
	debtID, ok := h.ParamID(c)
	if !ok {
		return
	}

	d, err := h.service.CancelDebt(c.Request.Context(), debtID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, h.mapper()(d))
}
