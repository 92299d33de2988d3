package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"shopledger/internal/domain/customer"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// CustomerHandler serves the customer directory.
type CustomerHandler struct {
	*BaseHandler
	service *customer.Service
	loc     *time.Location
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service, loc *time.Location) *CustomerHandler {
	return &CustomerHandler{
		BaseHandler: base,
		service:     service,
		loc:         loc,
	}
}

// List handles GET /customers
func (h *CustomerHandler) List(c *gin.Context) {
	var q dto.CustomerListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.service.List(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, identity[*customer.Customer]))
}

// Create handles POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req dto.CustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput(h.loc)
	if err != nil {
		h.Error(c, err)
		return
	}

	cu, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, cu)
}

// Get handles GET /customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	customerID, ok := h.ParamID(c)
	if !ok {
		return
	}

	details, err := h.service.Get(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, details)
}

// Update handles PUT /customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	customerID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.CustomerRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput(h.loc)
	if err != nil {
		h.Error(c, err)
		return
	}

	cu, err := h.service.Update(c.Request.Context(), customerID, in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, cu)
}

// Delete handles DELETE /customers/:id
func (h *CustomerHandler) Delete(c *gin.Context) {
	customerID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), customerID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RefreshStatistics handles POST /customers/:id/statistics
func (h *CustomerHandler) RefreshStatistics(c *gin.Context) {
	customerID, ok := h.ParamID(c)
	if !ok {
		return
	}

	stats, err := h.service.RefreshStatistics(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, stats)
}
