package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"skenterprise/billing/internal/api/handlers"
	"skenterprise/billing/internal/api/middleware"
	"skenterprise/billing/internal/config"
	"skenterprise/billing/internal/services"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, taskClient handlers.IAsynqClient) *gin.Engine {
	// Initialize services needed by API handlers HERE
	taxCalculator := services.NewTaxCalculator()
	invoiceService := services.NewInvoiceService(db, cfg, taxCalculator)
	customerService := services.NewCustomerService(db)
	itemService := services.NewItemService(db)

	r := gin.Default()

	// Initialize Middleware
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)

	// Apply global middleware first (order matters)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	restInvoiceHandler := handlers.NewRestInvoiceHandler(cfg, invoiceService, taskClient)
	restCustomerHandler := handlers.NewRestCustomerHandler(customerService)
	restItemHandler := handlers.NewRestItemHandler(itemService)
	restDashboardHandler := handlers.NewRestDashboardHandler(invoiceService)

	v1 := r.Group("/v1")
	{
		// Customer catalog
		v1.POST("/customer", restCustomerHandler.CreateCustomer)
		v1.GET("/customer", restCustomerHandler.ListCustomers)
		v1.GET("/customer/:id", restCustomerHandler.GetCustomerByID)

		// Item catalog
		v1.POST("/item", restItemHandler.CreateItem)
		v1.GET("/item", restItemHandler.ListItems)
		v1.GET("/item/:id", restItemHandler.GetItemByID)

		// Invoices
		v1.POST("/invoice", restInvoiceHandler.CreateInvoice)
		v1.GET("/invoice", restInvoiceHandler.ListInvoices)
		v1.GET("/invoice/:id", restInvoiceHandler.GetInvoiceByID)
		v1.PUT("/invoice/:id/status", restInvoiceHandler.SetInvoiceStatus)
		v1.GET("/invoice/:id/document", restInvoiceHandler.GetInvoiceDocument)
		v1.GET("/invoice/:id/pdf", restInvoiceHandler.GetInvoicePDF)
		v1.POST("/invoice/:id/export", restInvoiceHandler.ExportInvoice)
		v1.GET("/next-invoice-number", restInvoiceHandler.NextInvoiceNumber)

		// Dashboard
		v1.GET("/dashboard", restDashboardHandler.GetDashboard)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Liveness of the backing stores
		v1.GET("/health", func(c *gin.Context) {
			ctx := c.Request.Context()
			if err := db.Client().Ping(ctx, nil); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "mongo": err.Error()})
				return
			}
			if err := rdb.Ping(ctx).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "redis": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	return r
}
