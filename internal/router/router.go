// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/unique-collection/catalog/internal/config"
	"github.com/unique-collection/catalog/internal/handlers"
	"github.com/unique-collection/catalog/internal/middleware"
	"github.com/unique-collection/catalog/internal/services"
	"github.com/unique-collection/catalog/internal/utils"
)

// Initialize wires the HTTP surface around an already constructed catalog
// service.
func Initialize(catalog *services.CatalogService, cfg *config.Config, logger *logrus.Logger) *gin.Engine {
	productHandler := handlers.NewProductHandler(catalog, cfg.Catalog.DefaultPageSize, logger)
	adminHandler := handlers.NewAdminHandler(catalog, logger)

	utils.SetErrorDetail(cfg.IsDevelopment())

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	api := r.Group("/api")
	api.Use(middleware.GeneralRateLimit())
	{
		products := api.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.DELETE("/:id", middleware.AdminRequired(cfg.Admin.JWTSecret), productHandler.DeleteProduct)
		}
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AdminRequired(cfg.Admin.JWTSecret))
	{
		admin.GET("", adminHandler.Index)
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.GET("/add-product", adminHandler.AddProductForm)
		admin.POST("/add-product", middleware.UploadRateLimit(), adminHandler.AddProduct)
		admin.GET("/edit-product/:id", adminHandler.EditProductForm)
		admin.POST("/edit-product/:id", middleware.UploadRateLimit(), adminHandler.EditProduct)
	}

	return r
}
