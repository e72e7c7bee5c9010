package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skenterprise/billing/internal/services"
)

// RestDashboardHandler serves the aggregates behind the dashboard screen.
type RestDashboardHandler struct {
	invoiceService services.IInvoiceService
}

// NewRestDashboardHandler creates a new RestDashboardHandler.
func NewRestDashboardHandler(invoiceService services.IInvoiceService) *RestDashboardHandler {
	return &RestDashboardHandler{
		invoiceService: invoiceService,
	}
}

// GetDashboard handles GET /v1/dashboard
func (h *RestDashboardHandler) GetDashboard(c *gin.Context) {
	stats, err := h.invoiceService.DashboardStats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute dashboard stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
