package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"

	"skenterprise/billing/internal/config"
	"skenterprise/billing/internal/document"
	"skenterprise/billing/internal/models"
	"skenterprise/billing/internal/services"
	"skenterprise/billing/internal/tasks"
	"skenterprise/billing/internal/utils"
)

// IAsynqClient defines the interface for the Asynq client methods used by the handler.
// This allows easier mocking than using the concrete asynq.Client.
type IAsynqClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// RestInvoiceHandler handles REST requests for invoices.
type RestInvoiceHandler struct {
	cfg            *config.Config
	invoiceService services.IInvoiceService
	taskClient     IAsynqClient
}

// NewRestInvoiceHandler creates a new RestInvoiceHandler.
func NewRestInvoiceHandler(cfg *config.Config, invoiceService services.IInvoiceService, taskClient IAsynqClient) *RestInvoiceHandler {
	return &RestInvoiceHandler{
		cfg:            cfg,
		invoiceService: invoiceService,
		taskClient:     taskClient,
	}
}

// CreateInvoice handles POST /v1/invoice. Tax amounts and the invoice
// number are derived server-side; any aggregates in the request body are
// ignored.
func (h *RestInvoiceHandler) CreateInvoice(c *gin.Context) {
	var draft models.InvoiceDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), draft)
	if err != nil {
		if isDraftError(err) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create invoice"})
		return
	}

	c.JSON(http.StatusCreated, invoice)
}

// isDraftError reports whether err is a rejection of the submitted draft
// rather than a storage failure.
func isDraftError(err error) bool {
	return errors.Is(err, services.ErrNegativeRate) ||
		errors.Is(err, services.ErrNegativeQty) ||
		errors.Is(err, services.ErrInvalidTaxPercent) ||
		errors.Is(err, services.ErrEmptyCustomerName) ||
		errors.Is(err, models.ErrInvalidStatus)
}

// ListInvoices handles GET /v1/invoice with an optional ?q= filter on
// customer name and invoice number.
func (h *RestInvoiceHandler) ListInvoices(c *gin.Context) {
	query := c.Query("q")

	invoices, err := h.invoiceService.ListInvoices(c.Request.Context(), query)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list invoices"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoices})
}

// GetInvoiceByID handles GET /v1/invoice/:id
func (h *RestInvoiceHandler) GetInvoiceByID(c *gin.Context) {
	invoice, ok := h.findInvoice(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// SetInvoiceStatus handles PUT /v1/invoice/:id/status
func (h *RestInvoiceHandler) SetInvoiceStatus(c *gin.Context) {
	invoiceID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID format"})
		return
	}

	var body struct {
		Status models.InvoiceStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err = h.invoiceService.SetInvoiceStatus(c.Request.Context(), invoiceID, body.Status)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidStatus):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, mongo.ErrNoDocuments):
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		default:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update invoice status"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": body.Status})
}

// GetInvoiceDocument handles GET /v1/invoice/:id/document. It returns the
// assembled print document as JSON, with the amount in words and the
// seller block filled in.
func (h *RestInvoiceHandler) GetInvoiceDocument(c *gin.Context) {
	invoice, ok := h.findInvoice(c)
	if !ok {
		return
	}

	doc, err := document.Build(invoice, h.cfg)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assemble invoice document"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

// GetInvoicePDF handles GET /v1/invoice/:id/pdf. The PDF is rendered
// synchronously and streamed back for immediate download.
func (h *RestInvoiceHandler) GetInvoicePDF(c *gin.Context) {
	invoice, ok := h.findInvoice(c)
	if !ok {
		return
	}

	doc, err := document.Build(invoice, h.cfg)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assemble invoice document"})
		return
	}

	pdfBytes, err := document.RenderPDF(doc)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render invoice PDF"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=Invoice_%s.pdf", invoice.InvoiceNumber))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// ExportInvoice handles POST /v1/invoice/:id/export. The export runs in
// the background; the request returns as soon as the task is enqueued.
func (h *RestInvoiceHandler) ExportInvoice(c *gin.Context) {
	invoice, ok := h.findInvoice(c)
	if !ok {
		return
	}

	task, err := tasks.NewInvoiceExportTask(invoice)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare export task"})
		return
	}

	info, err := h.taskClient.EnqueueContext(c.Request.Context(), task)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to enqueue export task"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"taskId":        info.ID,
		"invoiceNumber": invoice.InvoiceNumber,
	})
}

// NextInvoiceNumber handles GET /v1/next-invoice-number. Calling it does
// not reserve the number; repeated calls return the same preview until an
// invoice is actually created.
func (h *RestInvoiceHandler) NextInvoiceNumber(c *gin.Context) {
	number, err := h.invoiceService.NextInvoiceNumber(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to derive next invoice number"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoiceNumber": number})
}

// findInvoice resolves the :id path parameter and loads the invoice,
// writing the error response itself when it cannot.
func (h *RestInvoiceHandler) findInvoice(c *gin.Context) (*models.Invoice, bool) {
	invoiceID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID format"})
		return nil, false
	}

	invoice, err := h.invoiceService.FindInvoiceByID(c.Request.Context(), invoiceID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve invoice"})
		}
		return nil, false
	}
	return invoice, true
}
