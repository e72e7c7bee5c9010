package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"skenterprise/billing/internal/services"
	"skenterprise/billing/internal/utils"
)

// RestCustomerHandler handles REST requests for the customer catalog.
type RestCustomerHandler struct {
	customerService services.ICustomerService
}

// NewRestCustomerHandler creates a new RestCustomerHandler.
func NewRestCustomerHandler(customerService services.ICustomerService) *RestCustomerHandler {
	return &RestCustomerHandler{
		customerService: customerService,
	}
}

// CreateCustomer handles POST /v1/customer
func (h *RestCustomerHandler) CreateCustomer(c *gin.Context) {
	var body struct {
		Name    string `json:"name"`
		GSTIN   string `json:"gstin"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Customer name is required"})
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), body.Name, body.GSTIN, body.Address)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create customer"})
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// ListCustomers handles GET /v1/customer
func (h *RestCustomerHandler) ListCustomers(c *gin.Context) {
	customers, err := h.customerService.ListCustomers(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list customers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": customers})
}

// GetCustomerByID handles GET /v1/customer/:id
func (h *RestCustomerHandler) GetCustomerByID(c *gin.Context) {
	customerID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID format"})
		return
	}

	customer, err := h.customerService.FindCustomerByID(c.Request.Context(), customerID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve customer"})
		}
		return
	}

	c.JSON(http.StatusOK, customer)
}
