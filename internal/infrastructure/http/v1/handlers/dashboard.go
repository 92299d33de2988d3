package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/calendar"
	"shopledger/internal/domain/dashboard"
)

// DashboardHandler serves daily statistics snapshots.
type DashboardHandler struct {
	*BaseHandler
	service *dashboard.Service
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(base *BaseHandler, service *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: base,
		service:     service,
	}
}

// parseDate accepts YYYY-MM-DD or "today".
func (h *DashboardHandler) parseDate(c *gin.Context, field, raw string) (time.Time, bool) {
	if raw == "" || raw == "today" {
		return h.service.Today(), true
	}
	t, err := calendar.ParseDate(raw, h.service.Location())
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid date").WithField(field, raw))
		return time.Time{}, false
	}
	return t, true
}

// Get handles GET /dashboard/:date
func (h *DashboardHandler) Get(c *gin.Context) {
	date, ok := h.parseDate(c, "date", c.Param("date"))
	if !ok {
		return
	}

	stats, err := h.service.GetSnapshot(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, stats)
}

// Recompute handles POST /dashboard/:date/recompute
func (h *DashboardHandler) Recompute(c *gin.Context) {
	date, ok := h.parseDate(c, "date", c.Param("date"))
	if !ok {
		return
	}

	stats, err := h.service.RecomputeDailySnapshot(c.Request.Context(), date)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, stats)
}

// Range handles GET /dashboard?from=&to= (inclusive, both default to today).
func (h *DashboardHandler) Range(c *gin.Context) {
	from, ok := h.parseDate(c, "from", c.Query("from"))
	if !ok {
		return
	}
	to, ok := h.parseDate(c, "to", c.Query("to"))
	if !ok {
		return
	}

	items, err := h.service.ListSnapshots(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	if items == nil {
		items = []*dashboard.Stats{}
	}

	h.OK(c, gin.H{"items": items})
}
