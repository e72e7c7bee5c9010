package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"skenterprise/billing/internal/api/handlers"
	"skenterprise/billing/internal/config"
	"skenterprise/billing/internal/models"
	"skenterprise/billing/internal/services"
	"skenterprise/billing/internal/tasks"
	"skenterprise/billing/internal/utils"
)

func testHandlerConfig() *config.Config {
	return &config.Config{
		CompanyName:   "S. K. ENTERPRISE",
		CompanyGSTIN:  "24CMAPK3117Q1ZZ",
		PlaceOfSupply: "GUJARAT (24)",
	}
}

func sampleInvoice(id utils.SixID) *models.Invoice {
	return &models.Invoice{
		Base:          models.Base{ID: id},
		InvoiceNumber: "INV-2024-007",
		Date:          time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		CustomerName:  "ABC PHARMA",
		Items: []models.InvoiceLine{
			{Name: "BRASS BUSH", HsnCode: "8401", Rate: 150, Qty: 2, CgstPercent: 9, SgstPercent: 9,
				Amount: 300, CgstAmount: 27, SgstAmount: 27, Total: 354},
		},
		WithoutGst: 300, CgstTotal: 27, SgstTotal: 27, GstAmount: 54, GrandTotal: 354,
		Status: models.StatusPending,
	}
}

func setupInvoiceRouter(h *handlers.RestInvoiceHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/v1/invoice", h.CreateInvoice)
	r.GET("/v1/invoice", h.ListInvoices)
	r.GET("/v1/invoice/:id", h.GetInvoiceByID)
	r.PUT("/v1/invoice/:id/status", h.SetInvoiceStatus)
	r.GET("/v1/invoice/:id/document", h.GetInvoiceDocument)
	r.GET("/v1/invoice/:id/pdf", h.GetInvoicePDF)
	r.POST("/v1/invoice/:id/export", h.ExportInvoice)
	r.GET("/v1/next-invoice-number", h.NextInvoiceNumber)
	return r
}

func TestRestInvoiceHandler_CreateInvoice_Success(t *testing.T) {
	mockInvoiceSvc := new(MockInvoiceService)
	handler := handlers.NewRestInvoiceHandler(testHandlerConfig(), mockInvoiceSvc, nil)
	r := setupInvoiceRouter(handler)

	invoiceID := utils.NewSixID()
	created := sampleInvoice(invoiceID)
	mockInvoiceSvc.On("CreateInvoice", mock.Anything, mock.MatchedBy(func(d models.InvoiceDraft) bool {
		return d.CustomerName == "ABC PHARMA" && len(d.Items) == 1
	})).Return(created, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"customerName": "ABC PHARMA",
		"items": []map[string]interface{}{
			{"name": "BRASS BUSH", "hsnCode": "8401", "rate": 150, "qty": 2, "cgstPercent": 9, "sgstPercent": 9},
		},
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/invoice", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var respBody models.Invoice
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Equal(t, "INV-2024-007", respBody.InvoiceNumber)
	assert.Equal(t, float64(354), respBody.GrandTotal)
	mockInvoiceSvc.AssertExpectations(t)
}

func TestRestInvoiceHandler_CreateInvoice_RejectedDraft(t *testing.T) {
	mockInvoiceSvc := new(MockInvoiceService)
	handler := handlers.NewRestInvoiceHandler(testHandlerConfig(), mockInvoiceSvc, nil)
	r := setupInvoiceRouter(handler)

	mockInvoiceSvc.On("CreateInvoice", mock.Anything, mock.Anything).Return(nil, services.ErrNegativeRate)

	body, _ := json.Marshal(map[string]interface{}{
		"customerName": "ABC PHARMA",
		"items": []map[string]interface{}{
			{"name": "BRASS BUSH", "rate": -5, "qty": 1},
		},
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/invoice", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockInvoiceSvc.AssertExpectations(t)
}

func TestRestInvoiceHandler_GetInvoiceByID_NotFound(t *testing.T) {
	mockInvoiceSvc := new(MockInvoiceService)
	handler := handlers.NewRestInvoiceHandler(testHandlerConfig(), mockInvoiceSvc, nil)
	r := setupInvoiceRouter(handler)

	invoiceID := utils.NewSixID()
	mockInvoiceSvc.On("FindInvoiceByID", mock.Anything, invoiceID).Return(nil, mongo.ErrNoDocuments)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/invoice/"+invoiceID.String(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var respBody map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Contains(t, respBody["error"], "Invoice not found")
	mockInvoiceSvc.AssertExpectations(t)
}

func TestRestInvoiceHandler_GetInvoiceByID_InvalidID(t *testing.T) {
	mockInvoiceSvc := new(MockInvoiceService)
	handler := handlers.NewRestInvoiceHandler(testHandlerConfig(), mockInvoiceSvc, nil)
	r := setupInvoiceRouter(handler)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/invoice/not-a-sixid-at-all", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockInvoiceSvc.AssertNotCalled(t, "FindInvoiceByID", mock.Anything, mock.Anything)
}

func TestRestInvoiceHandler_ListInvoices_PassesQuery(t *testing.T) {
	mockInvoiceSvc := new(MockInvoiceService)
	handler := handlers.NewRestInvoiceHandler(testHandlerConfig(), mockInvoiceSvc, nil)
	r := setupInvoiceRouter(handler)

	invoices := []models.Invoice{*sampleInvoice(utils.NewSixID())}
	mockInvoiceSvc.On("ListInvoices", mock.Anything, "pharma").Return(invoices, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/invoice?q=pharma", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody struct {
		Data []models.Invoice `json:"data"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Len(t, respBody.Data, 1)
	mockInvoiceSvc.AssertExpectations(t)
}

func TestRestInvoiceHandler_SetInvoiceStatus_Invalid(t *testing.T) {
	mockInvoiceSvc := new(MockInvoiceService)
	handler := handlers.NewRestInvoiceHandler(testHandlerConfig(), mockInvoiceSvc, nil)
	r := setupInvoiceRouter(handler)

	invoiceID := utils.NewSixID()
	mockInvoiceSvc.On("SetInvoiceStatus", mock.Anything, invoiceID, models.InvoiceStatus("refunded")).
		Return(models.ErrInvalidStatus)

	body, _ := json.Marshal(map[string]string{"status": "refunded"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/v1/invoice/"+invoiceID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockInvoiceSvc.AssertExpectations(t)
}

func TestRestInvoiceHandler_GetInvoiceDocument(t *testing.T) {
	mockInvoiceSvc := new(MockInvoiceService)
	handler := handlers.NewRestInvoiceHandler(testHandlerConfig(), mockInvoiceSvc, nil)
	r := setupInvoiceRouter(handler)

	invoiceID := utils.NewSixID()
	mockInvoiceSvc.On("FindInvoiceByID", mock.Anything, invoiceID).Return(sampleInvoice(invoiceID), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/invoice/"+invoiceID.String()+"/document", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Equal(t, "INV-2024-007", respBody["invoiceNumber"])
	assert.Contains(t, respBody["amountInWords"], "Three Hundred Fifty Four Rupees Only")
	mockInvoiceSvc.AssertExpectations(t)
}

func TestRestInvoiceHandler_GetInvoicePDF(t *testing.T) {
	mockInvoiceSvc := new(MockInvoiceService)
	handler := handlers.NewRestInvoiceHandler(testHandlerConfig(), mockInvoiceSvc, nil)
	r := setupInvoiceRouter(handler)

	invoiceID := utils.NewSixID()
	mockInvoiceSvc.On("FindInvoiceByID", mock.Anything, invoiceID).Return(sampleInvoice(invoiceID), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/invoice/"+invoiceID.String()+"/pdf", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Invoice_INV-2024-007.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
	mockInvoiceSvc.AssertExpectations(t)
}

func TestRestInvoiceHandler_ExportInvoice_Enqueues(t *testing.T) {
	mockInvoiceSvc := new(MockInvoiceService)
	mockTaskClient := new(MockAsynqClient)
	handler := handlers.NewRestInvoiceHandler(testHandlerConfig(), mockInvoiceSvc, mockTaskClient)
	r := setupInvoiceRouter(handler)

	invoiceID := utils.NewSixID()
	mockInvoiceSvc.On("FindInvoiceByID", mock.Anything, invoiceID).Return(sampleInvoice(invoiceID), nil)
	mockTaskClient.On("EnqueueContext",
		mock.Anything,
		mock.MatchedBy(func(task *asynq.Task) bool {
			return task.Type() == tasks.TypeInvoiceExport
		}),
		mock.Anything,
	).Return(&asynq.TaskInfo{ID: "task-123"}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/invoice/"+invoiceID.String()+"/export", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	var respBody map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Equal(t, "task-123", respBody["taskId"])
	assert.Equal(t, "INV-2024-007", respBody["invoiceNumber"])
	mockInvoiceSvc.AssertExpectations(t)
	mockTaskClient.AssertExpectations(t)
}

func TestRestInvoiceHandler_ExportInvoice_QueueDown(t *testing.T) {
	mockInvoiceSvc := new(MockInvoiceService)
	mockTaskClient := new(MockAsynqClient)
	handler := handlers.NewRestInvoiceHandler(testHandlerConfig(), mockInvoiceSvc, mockTaskClient)
	r := setupInvoiceRouter(handler)

	invoiceID := utils.NewSixID()
	mockInvoiceSvc.On("FindInvoiceByID", mock.Anything, invoiceID).Return(sampleInvoice(invoiceID), nil)
	mockTaskClient.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/invoice/"+invoiceID.String()+"/export", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	mockTaskClient.AssertExpectations(t)
}

func TestRestInvoiceHandler_NextInvoiceNumber(t *testing.T) {
	mockInvoiceSvc := new(MockInvoiceService)
	handler := handlers.NewRestInvoiceHandler(testHandlerConfig(), mockInvoiceSvc, nil)
	r := setupInvoiceRouter(handler)

	mockInvoiceSvc.On("NextInvoiceNumber", mock.Anything).Return("INV-2024-008", nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/next-invoice-number", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Equal(t, "INV-2024-008", respBody["invoiceNumber"])
	mockInvoiceSvc.AssertExpectations(t)
}
