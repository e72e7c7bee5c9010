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

// RestItemHandler handles REST requests for the item catalog.
type RestItemHandler struct {
	itemService services.IItemService
}

// NewRestItemHandler creates a new RestItemHandler.
func NewRestItemHandler(itemService services.IItemService) *RestItemHandler {
	return &RestItemHandler{
		itemService: itemService,
	}
}

// CreateItem handles POST /v1/item
func (h *RestItemHandler) CreateItem(c *gin.Context) {
	var body struct {
		Name    string  `json:"name"`
		HsnCode string  `json:"hsnCode"`
		Rate    float64 `json:"rate"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Item name is required"})
		return
	}

	item, err := h.itemService.CreateItem(c.Request.Context(), body.Name, body.HsnCode, body.Rate)
	if err != nil {
		if errors.Is(err, services.ErrNegativeRate) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create item"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// ListItems handles GET /v1/item
func (h *RestItemHandler) ListItems(c *gin.Context) {
	items, err := h.itemService.ListItems(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list items"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

// GetItemByID handles GET /v1/item/:id
func (h *RestItemHandler) GetItemByID(c *gin.Context) {
	itemID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID format"})
		return
	}

	item, err := h.itemService.FindItemByID(c.Request.Context(), itemID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve item"})
		}
		return
	}

	c.JSON(http.StatusOK, item)
}
