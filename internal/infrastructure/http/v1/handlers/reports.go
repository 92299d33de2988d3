package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/calendar"
	"shopledger/internal/domain/reports"
	"shopledger/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
	loc     *time.Location
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service, loc *time.Location) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
		loc:         loc,
	}
}

// Sales handles GET /reports/sales
func (h *ReportsHandler) Sales(c *gin.Context) {
	var q dto.ReportQuery
	if !h.BindQuery(c, &q) {
		return
	}

	f := reports.SalesReportFilter{Period: q.Period, Status: q.Status}
	if q.Date != "" {
		anchor, err := calendar.ParseDate(q.Date, h.loc)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid date").WithField("date", q.Date))
			return
		}
		f.Anchor = &anchor
	}

	report, err := h.service.SalesReport(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}
